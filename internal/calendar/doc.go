// Package calendar maps Google Calendar resources onto typed calendars and
// events.
//
// EventAPI lists the events of a home calendar page by page, following
// nextPageToken until the final page hands out a nextSyncToken, which is
// stored on the calendar for the next incremental listing. Events organized by
// another calendar are attached to a calendar built from their organizer.
//
// PartialEvent records which fields were set so that a patch only sends those:
//
//	patch := calendar.NewPartialEvent(home, "event-id")
//	patch.SetName("Retro")
//	_, err := api.Persist(ctx, patch, calendar.WithSendNotifications(true))
//
// CalendarAPI reads the calendar list and the user permissions of a calendar.
package calendar
