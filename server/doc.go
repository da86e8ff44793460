/*
Package server exposes a task working set over HTTP as a read-only feed.

# Basic Usage

Any TaskSource can be served; *tracker.Tracker is the usual one:

	tr, err := tracker.New(tracker.DefaultConfig)
	if err != nil {
		log.Fatal(err)
	}
	http.Handle("/", server.NewFeedHandler(tr, slog.Default()))
	http.ListenAndServe(":8080", nil)

# Routes

  - GET /tasks.ics - every task as a VTODO in an iCalendar stream
  - GET /tasks.xml - the same calendar as xCal (RFC 6321)
  - GET /agenda?date=YYYY-MM-DD&days=N&category=ID - due occurrences as JSON

The feeds carry an ETag derived from the task set and honour
If-None-Match, so calendar clients polling the subscription get 304
until a task changes.

# Authentication

WithBasicAuth guards every route with one set of Basic credentials.
Without it the feed is open.
*/
package server
