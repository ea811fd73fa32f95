// Package notify publishes checkout and polling outcomes to downstream consumers.
package notify
