// Package capture turns athlete sightings gathered while driving the schedule page into a
// per-day feed of appearances for one nationality.
//
// Sightings arrive from three producers: the embedded day API payload, JSON responses
// intercepted while the page is being clicked through, and dialog text read from the DOM
// after each click. They are collected as-is and merged once by the Aggregator, which
// filters by nationality, normalizes names, fills sport and event from the schedule, drops
// sightings carrying no schedulable data, and groups the result by day.
package capture
