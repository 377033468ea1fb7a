package main

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"go.appointy.com/queryschema/datamodel"
)

// User is a member of the site. Posts and Address are relations.
type User struct {
	ID         string          `model:"id,id,auto"`
	ExternalID uuid.UUID       `model:"externalId,unique"`
	Name       string          `model:"name"`
	Email      string          `model:"email,unique"`
	Age        *int32          `model:"age"`
	Reputation float64         `model:"reputation,default=0"`
	IsActive   bool            `model:"isActive,default=true"`
	Role       Role            `model:"role,default=MEMBER"`
	Nicknames  []string        `model:"nicknames"`
	Settings   json.RawMessage `model:"settings,optional"`
	Password   string          `model:"password,hidden"`
	CreatedAt  time.Time       `model:"createdAt,auto"`
	Posts      []*Post         `model:"posts,relation=UserPosts"`
	Address    *Address        `model:"address"`
}

// Post is written by exactly one User. Slug and Version identify a post.
type Post struct {
	ID        string    `model:"id,id,auto"`
	Slug      string    `model:"slug"`
	Version   int       `model:"version,default=1"`
	Title     string    `model:"title"`
	Body      *string   `model:"body"`
	Published bool      `model:"published,default=false"`
	Tags      []string  `model:"tags"`
	Author    *User     `model:"author,required,relation=UserPosts"`
	UpdatedAt time.Time `model:"updatedAt,auto"`
}

func (Post) UniqueIndexes() []*datamodel.Index {
	return []*datamodel.Index{{Name: "slugVersion", Fields: []string{"slug", "version"}}}
}

// Address is stored inside its User.
type Address struct {
	datamodel.Embedded
	Street  string  `model:"street"`
	City    string  `model:"city"`
	ZipCode *string `model:"zipCode"`
}

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleGuest  Role = "GUEST"
)

func (Role) EnumValues() []string {
	return []string{string(RoleAdmin), string(RoleMember), string(RoleGuest)}
}
