package webhook

import "github.com/stretchr/testify/mock"

// MatchDelivery creates a custom matcher for delivery arguments in mocks
func MatchDelivery(matcher func(Delivery) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchWebhook creates a custom matcher for webhook arguments in mocks
func MatchWebhook(matcher func(Webhook) bool) interface{} {
	return mock.MatchedBy(matcher)
}
