package gateway

// User is the current user as returned by the GraphQL API.
type User struct {
	AvatarURL      string `json:"avatarUrl"`
	Email          string `json:"email"`
	ID             string `json:"id"`
	LastActivityOn string `json:"lastActivityOn"`
	Name           string `json:"name"`
	Username       string `json:"username"`
}

type Profile struct {
	User User
	// UserID is the numeric part of User.ID.
	UserID string
}

type Groups struct {
	Nodes []Group `json:"nodes"`
}

type Group struct {
	AvatarURL string       `json:"avatarUrl"`
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	WebURL    string       `json:"webUrl"`
	FullPath  string       `json:"fullPath"`
	Parent    *GroupParent `json:"parent"`
}

type GroupParent struct {
	Projects ProjectConnection `json:"projects"`
}

type ProjectConnection struct {
	Nodes []*Project `json:"nodes"`
}

type Project struct {
	AvatarURL      string      `json:"avatarUrl"`
	CreatedAt      string      `json:"createdAt"`
	Description    string      `json:"description"`
	FullPath       string      `json:"fullPath"`
	ID             string      `json:"id"`
	LastActivityAt string      `json:"lastActivityAt"`
	Name           string      `json:"name"`
	WebURL         string      `json:"webUrl"`
	Repository     *Repository `json:"repository"`
}

type Repository struct {
	Tree *Tree `json:"tree"`
}

type Tree struct {
	LastCommit *Commit `json:"lastCommit"`
}

type Commit struct {
	CommittedDate  string `json:"committedDate"`
	AuthorGravatar string `json:"authorGravatar"`
	AuthorName     string `json:"authorName"`
}

// event is one entry of the REST events endpoint. Target fields are null for
// events without a target (pushes, joins).
type event struct {
	TargetType  *string `json:"target_type"`
	ActionName  string  `json:"action_name"`
	CreatedAt   string  `json:"created_at"`
	TargetTitle *string `json:"target_title"`
}

// ActivityEvent is the part of an event shown in the activity view.
type ActivityEvent struct {
	TargetType  string `json:"target_type"`
	ActionName  string `json:"action_name"`
	CreatedAt   string `json:"created_at"`
	TargetTitle string `json:"target_title"`
}

type Activity struct {
	Events      []ActivityEvent
	TotalPages  int
	CurrentPage int
}

// Pages lists the page numbers 1..TotalPages for pagination links.
func (a Activity) Pages() []int {
	pages := make([]int, a.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
