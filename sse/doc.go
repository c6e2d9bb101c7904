// Package sse streams live collection views to HTTP clients as
// Server-Sent Events.
//
// A Hub fans frames out to the clients of a topic. A Publisher subscribes
// to one view, keeps a mirrored copy of it, and broadcasts every change to
// the view's topic; a client joining a topic first receives a snapshot
// frame taken atomically with respect to the change frames that follow.
//
//	hub := sse.NewHub()
//	pub := sse.PublishView(hub, "active", activeView)
//	router.GET("/events/active", func(c *gin.Context) {
//		sse.ServeSSE(c.Writer, c.Request, pub)
//	})
package sse
