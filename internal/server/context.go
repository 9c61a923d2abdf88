package server

type contextKey string

// contextKeyRequestID is the context key for request ID
const contextKeyRequestID contextKey = "requestID"
