// Package pricing predicts generation spend before any model call is made.
// Estimation is a pure function of the queue, a static pricing table keyed
// by model identifier, and the configured caption length bound.
package pricing
