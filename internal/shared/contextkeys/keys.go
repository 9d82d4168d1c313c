package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "lms-portal context key " + string(c)
}

// RequestIDKey is the key for the request id assigned by the requestid middleware.
const RequestIDKey = contextKey("requestID")

// ClientIDKey is the key for the browser client id carried by the client cookie.
const ClientIDKey = contextKey("clientID")

// UserIDKey is the key for the id of the signed-in user, when known.
const UserIDKey = contextKey("userID")

// RoleKey is the key for the role of the signed-in user, when known.
const RoleKey = contextKey("role")

// OperationKey names the portal operation a log line belongs to.
const OperationKey = contextKey("operation")
