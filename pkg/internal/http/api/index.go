package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Use(authenticate)
	{
		auth := api.Group("/auth")
		{
			auth.Post("/login", doLogin)
			auth.Post("/guest", doGuestJoin)
		}

		events := api.Group("/events")
		{
			events.Post("/", createEvent)
			events.Get("/code/:accessCode", getEventWithAccessCode)
			events.Get("/:eventId", getEvent)
			events.Get("/:eventId/guests", listEventGuests)
			events.Get("/:eventId/polls", listEventPolls)
			events.Get("/:eventId/timeline", listTimelineItems)
			events.Get("/:eventId/tracks", getTrackQueue)
			events.Post("/:eventId/tracks", suggestTrack)
			events.Post("/:eventId/tracks/:trackId/votes", voteTrack)
		}

		polls := api.Group("/polls")
		{
			polls.Post("/", createPoll)
			polls.Get("/:pollId", getPoll)
			polls.Post("/:pollId/votes", votePoll)
			polls.Post("/:pollId/close", closePoll)
		}

		notifications := api.Group("/notifications")
		{
			notifications.Get("/", listNotifications)
			notifications.Post("/read-all", markAllNotificationsRead)
			notifications.Post("/:notificationId/read", markNotificationRead)
		}

		api.Post("/announcements", createAnnouncement)

		timeline := api.Group("/timeline")
		{
			timeline.Post("/", createTimelineItem)
			timeline.Put("/:itemId", editTimelineItem)
			timeline.Delete("/:itemId", deleteTimelineItem)
		}
	}
}

func MapWebsocket(app *fiber.App, baseURL string) {
	app.Use(baseURL, authenticate, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get(baseURL, websocket.New(handleSocket))
}
