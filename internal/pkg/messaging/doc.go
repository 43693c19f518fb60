// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Business code depends on the interfaces in this package and never on a
// broker client, so the NATS, Kafka and in-process drivers are interchangeable
// through NewFromDriver.
package messaging
