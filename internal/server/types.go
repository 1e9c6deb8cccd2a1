package server

// Response and request bodies of the API.

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RestrictedResponse struct {
	Message string `json:"message"`
	Users   []User `json:"users"`
}

type LoginRequest struct {
	Username string `json:"username"`
}

type ProtectedResponse struct {
	Message string `json:"message"`
	Secret  string `json:"secret"`
}

type WithHeadersResponse struct {
	Message string `json:"message"`
	// ReceivedHeaders maps lowercased request-header names to their
	// comma-joined values.
	ReceivedHeaders map[string]string `json:"receivedHeaders"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

var sampleUsers = []User{
	{ID: 1, Name: "Amit Lakade", Email: "amit@example.com"},
	{ID: 2, Name: "Ram Kale", Email: "ram@example.com"},
}
