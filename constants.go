package main

import "time"

// Route constants
const (
	RouteSubmit  = "/submit"
	RouteResults = "/results"
	RouteClear   = "/clear"
	RouteDebug   = "/debug"
	RouteHealthz = "/healthz"
)

// Response message constants
const (
	MessageSubmitted = "Game result recorded"
	MessageCleared   = "All results cleared"
)

// Error message constants
const (
	ErrorInvalidBody     = "Invalid or missing JSON body."
	ErrorStorage         = "Failed to save data."
	ErrorClearFailed     = "Failed to clear data."
	ErrorTooManyRequests = "Too many requests. Please slow down."
)

// Configuration defaults
const (
	DefaultPort                 = "10000"
	DefaultDataDir              = "data"
	DefaultRateLimitRPS         = 5
	DefaultRateLimitBurst       = 10
	DefaultShutdownTimeout      = 10 * time.Second
	DefaultLimiterIdleTTL       = 10 * time.Minute
	DefaultLimiterSweepInterval = time.Minute
	RequestIDHeader             = "X-Request-Id"
)
