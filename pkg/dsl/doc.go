/*
Package dsl provides a fluent builder for conversation transition tables.

It is an alternative to listing flow.Transition literals by hand, and the
usual way to tweak the restaurant dialogue without copying it:

	table, err := dsl.Extend(flow.DefaultTable()).
		From(domain.StateIntentIdentification).To(domain.StateNewReservation).
		OnKeywords("birthday", "anniversary").
		Because("celebration booking").
		First().
		Build()

The result is validated with flow.Validate and can be passed to
hostline.WithTable.
*/
package dsl
