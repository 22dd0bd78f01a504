// Package notifier announces schedule changes produced by a scrape run.
//
// A run yields a Summary holding new events, status changes and the athlete feed.
// Notifiers publish it to a channel: stdout for dry runs, Twitter, a Telegram chat or a Kafka topic.
// Each channel formats the summary for its own audience.
package notifier
