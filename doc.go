/*
Package hostline runs the table-booking conversation of a restaurant voice
assistant as a deterministic state machine.

A conversation moves through greeting, city and outlet collection, intent
identification and one of the inquiry, booking, modification or
cancellation branches before reaching farewell. Each turn merges the slots
extracted upstream, evaluates the transition table in declaration order and
renders the agent instructions for the state it lands in. The engine never
talks to a language model itself; the voice platform does, using the
rendered prompts.

# Usage

	eng, err := hostline.New(ctx)
	if err != nil {
		log.Fatal(err)
	}

	conv, err := eng.Start(ctx, "call-123", nil)
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Turn(ctx, conv, hostline.TurnInput{
		Transcript: "I'd like to book a table in Delhi",
		Slots:      map[string]any{"city": "Delhi"},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Conversation.State, res.Prompt)

Conversations are values: Turn never modifies its argument, so callers own
persistence. The session package adds per-conversation locking on top of a
ConversationStore (memory or Redis).
*/
package hostline
