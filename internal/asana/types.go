package asana

import "time"

// User represents an Asana user object from the API.
type User struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Workspace represents an Asana workspace object.
type Workspace struct {
	GID            string `json:"gid"`
	Name           string `json:"name"`
	IsOrganization bool   `json:"is_organization"`
}

// UserRef is a reference to a user object (used in nested structures).
type UserRef struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// TeamRef is a reference to a team object.
type TeamRef struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Project represents an Asana project object from the API, limited to
// the fields requested via opt_fields.
type Project struct {
	GID       string   `json:"gid"`
	Name      string   `json:"name"`
	Completed bool     `json:"completed"`
	Archived  bool     `json:"archived"`
	Color     string   `json:"color"`
	Notes     string   `json:"notes"`
	Owner     *UserRef `json:"owner"`
	Team      *TeamRef `json:"team"`
}

// Task represents an Asana task object, limited to the fields needed
// for progress counting.
type Task struct {
	GID       string `json:"gid"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// ProjectStatus represents a single status update on a project.
type ProjectStatus struct {
	GID       string     `json:"gid"`
	Text      string     `json:"text"`
	Color     string     `json:"color"`
	CreatedAt *time.Time `json:"created_at"`
}

// nextPage carries Asana's pagination cursor.
type nextPage struct {
	Offset string `json:"offset"`
	Path   string `json:"path"`
	URI    string `json:"uri"`
}

// listEnvelope is the standard Asana collection response wrapper.
type listEnvelope[T any] struct {
	Data     []T       `json:"data"`
	NextPage *nextPage `json:"next_page"`
}

// objectEnvelope is the standard Asana single-object response wrapper.
type objectEnvelope[T any] struct {
	Data T `json:"data"`
}

// errorResponse is Asana's error payload shape.
type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Help    string `json:"help"`
	} `json:"errors"`
}
