package model

// User is the display config and statistics the room reads from the user
// directory. It is never written back by the engine.
type User struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Avatar *string   `json:"avatar,omitempty"`
	Stats  UserStats `json:"stats"`
}

type UserStats struct {
	Games  int `json:"games"`
	Wins   int `json:"wins"`
	Killed int `json:"killed"`
}

func (u User) String() string {
	if u.Name == "" {
		return u.ID
	}
	return u.Name
}
