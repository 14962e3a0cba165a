package wecom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestTagMemberListRoundTrip(t *testing.T) {
	t.Parallel()

	original := TagMemberList{
		Status: Status{ErrCode: ptr(int32(0)), ErrMsg: ptr("ok")},
		Members: []TagMember{
			{UserID: "u-1", Name: "Aoki"},
			{UserID: "u-2", Name: "Tanaka"},
		},
		PartyIDs: []uint32{3, 7},
		TagName:  "oncall",
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded TagMemberList
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestMemberRoundTrip(t *testing.T) {
	t.Parallel()

	original := Member{
		Name:           "Aoki",
		Departments:    []uint32{1, 4},
		Position:       "engineer",
		Mobile:         "13800000000",
		Gender:         "1",
		Email:          "aoki@example.com",
		Avatar:         "https://example.com/a.png",
		IsLeader:       1,
		Status:         1,
		Enable:         1,
		EnglishName:    "Aoki",
		Telephone:      "010-0000",
		Order:          []uint32{10, 20},
		MainDepartment: ptr(uint32(4)),
		QRCode:         "https://example.com/qr",
		Alias:          "ao",
		IsLeaderInDept: []uint32{1, 0},
		ThumbAvatar:    "https://example.com/t.png",
		BizMail:        ptr("aoki@corp.example.com"),
		UserID:         "u-1",
		ExtAttr:        map[string]any{"attrs": []any{}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Member
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestDepartmentRoundTripPreservesMissingParent(t *testing.T) {
	t.Parallel()

	root := Department{ID: 1, Name: "ACME", Order: 100}

	data, err := json.Marshal(root)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "parentid")

	var decoded Department
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, root, decoded)
	assert.Nil(t, decoded.ParentID)
}

func TestStatusOK(t *testing.T) {
	t.Parallel()

	assert.True(t, Status{ErrCode: ptr(int32(0))}.OK())
	assert.False(t, Status{ErrCode: ptr(int32(301002))}.OK())
	assert.False(t, Status{}.OK(), "a missing errcode is not an explicit success")
}
