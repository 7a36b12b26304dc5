package middlewares

// gin context keys shared by the guards and the handlers.
const (
	CtxRequestID    = "request_id"
	ctxClaimsKey    = "auth.claims"
	ctxLoginUserKey = "auth.loginUser"
	ctxRentalKey    = "rental.target"
)
