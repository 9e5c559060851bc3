// Package models defines the data types exchanged between the StuVerFlow
// backend, the session manager, and the search layer.
package models

// Identity is the authenticated user's session record. It is created from a
// successful login/signup response, persisted verbatim in the local store,
// and destroyed on logout or expiry.
type Identity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Handle      string   `json:"handle"`
	Token       string   `json:"token"`
	Institution string   `json:"institution,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	Title       string   `json:"title,omitempty"`
	Expertise   []string `json:"expertise,omitempty"`
}

// IdentityPatch carries a partial profile update. Nil fields are left
// untouched by Apply. ID and Token are deliberately not patchable: profile
// edits must not change who is logged in or extend session life.
type IdentityPatch struct {
	Name        *string   `json:"name,omitempty"`
	Handle      *string   `json:"handle,omitempty"`
	Institution *string   `json:"institution,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	Interests   *[]string `json:"interests,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Expertise   *[]string `json:"expertise,omitempty"`
}

// Apply shallow-merges the patch into a copy of id and returns the result.
func (p IdentityPatch) Apply(id Identity) Identity {
	if p.Name != nil {
		id.Name = *p.Name
	}
	if p.Handle != nil {
		id.Handle = *p.Handle
	}
	if p.Institution != nil {
		id.Institution = *p.Institution
	}
	if p.Bio != nil {
		id.Bio = *p.Bio
	}
	if p.Interests != nil {
		id.Interests = append([]string(nil), (*p.Interests)...)
	}
	if p.Title != nil {
		id.Title = *p.Title
	}
	if p.Expertise != nil {
		id.Expertise = append([]string(nil), (*p.Expertise)...)
	}
	return id
}
