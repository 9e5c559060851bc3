package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestIdentityPatch_Apply_MergesOnlySetFields(t *testing.T) {
	id := Identity{ID: "1", Name: "A", Handle: "a_user", Token: "tok", Bio: "old bio"}

	merged := IdentityPatch{Name: strp("B")}.Apply(id)

	assert.Equal(t, "1", merged.ID)
	assert.Equal(t, "B", merged.Name)
	assert.Equal(t, "a_user", merged.Handle)
	assert.Equal(t, "tok", merged.Token)
	assert.Equal(t, "old bio", merged.Bio)
}

func TestIdentityPatch_Apply_CopiesSlices(t *testing.T) {
	interests := []string{"physics"}
	merged := IdentityPatch{Interests: &interests}.Apply(Identity{ID: "1"})

	interests[0] = "mutated"
	assert.Equal(t, []string{"physics"}, merged.Interests, "patch must copy slices, not alias them")
}

func TestSuggestionBundle_Normalize(t *testing.T) {
	b := SuggestionBundle{Tags: []string{"go"}}.Normalize()

	assert.NotNil(t, b.Questions)
	assert.NotNil(t, b.Users)
	assert.NotNil(t, b.Communities)
	assert.Equal(t, []string{"go"}, b.Tags)
}

func TestSearchResultEnvelope_Normalize(t *testing.T) {
	var e SearchResultEnvelope
	e.Normalize()

	assert.NotNil(t, e.Questions)
	assert.NotNil(t, e.Users)
	assert.NotNil(t, e.Communities)
	assert.NotNil(t, e.Suggestions.Tags)
}

func TestSignupRequest_Validate(t *testing.T) {
	ok := SignupRequest{Name: "Ada", Handle: "ada_l", Email: "ada@uni.edu", Password: "pw1234", ConfirmPassword: "pw1234"}

	tests := []struct {
		name    string
		mutate  func(r *SignupRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(r *SignupRequest) {}, wantErr: ""},
		{name: "missing name", mutate: func(r *SignupRequest) { r.Name = "" }, wantErr: "name"},
		{name: "malformed handle", mutate: func(r *SignupRequest) { r.Handle = "no spaces!" }, wantErr: "handle"},
		{name: "short handle", mutate: func(r *SignupRequest) { r.Handle = "ab" }, wantErr: "handle"},
		{name: "bad email", mutate: func(r *SignupRequest) { r.Email = "nope" }, wantErr: "email"},
		{name: "password mismatch", mutate: func(r *SignupRequest) { r.ConfirmPassword = "other" }, wantErr: "confirm_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ok
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrValidation))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantErr, ve.Field)
		})
	}
}

func TestAttachment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		att     Attachment
		wantErr bool
	}{
		{name: "valid png", att: Attachment{Name: "avatar.png", Data: []byte{1}}, wantErr: false},
		{name: "uppercase ext", att: Attachment{Name: "AVATAR.PNG", Data: []byte{1}}, wantErr: false},
		{name: "empty data", att: Attachment{Name: "avatar.png"}, wantErr: true},
		{name: "disallowed ext", att: Attachment{Name: "notes.exe", Data: []byte{1}}, wantErr: true},
		{name: "oversized", att: Attachment{Name: "big.jpg", Data: make([]byte, maxAttachmentSize+1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.att.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
