package middlewares

// gin context keys shared with handlers
const (
	CtxRequestID = "request_id"
	CtxUser      = "auth.user"
)
