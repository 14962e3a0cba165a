package wecom

// Status carries the errcode/errmsg pair the directory API attaches to
// every response. A non-zero errcode with a well-formed body still decodes
// successfully; callers decide how to interpret it.
type Status struct {
	ErrCode *int32  `json:"errcode,omitempty"`
	ErrMsg  *string `json:"errmsg,omitempty"`
}

// OK reports whether the response carries an explicit success code.
func (s Status) OK() bool {
	return s.ErrCode != nil && *s.ErrCode == 0
}

// TokenResponse is the payload of the token-issuance endpoint
type TokenResponse struct {
	Status
	AccessToken *string `json:"access_token,omitempty"`
	ExpiresIn   *uint32 `json:"expires_in,omitempty"`
}

// AgentList is the payload of the agent list endpoint
type AgentList struct {
	Status
	Agents []Agent `json:"agentlist"`
}

// Agent is one app registered in the tenant
type Agent struct {
	ID            uint32  `json:"agentid"`
	Name          string  `json:"name"`
	SquareLogoURL *string `json:"square_logo_url,omitempty"`
	RoundLogoURL  *string `json:"round_logo_url,omitempty"`
}

// AgentDetail is the payload of the per-agent detail endpoint
type AgentDetail struct {
	Status
	AgentID            *uint32         `json:"agentid,omitempty"`
	SquareLogoURL      *string         `json:"square_logo_url,omitempty"`
	Description        *string         `json:"description,omitempty"`
	AllowUserInfos     *AllowUserInfos `json:"allow_userinfos,omitempty"`
	AllowParties       *AllowParties   `json:"allow_partys,omitempty"`
	AllowTags          *AllowTags      `json:"allow_tags,omitempty"`
	Close              *uint32         `json:"close,omitempty"`
	RedirectDomain     *string         `json:"redirect_domain,omitempty"`
	ReportLocationFlag *uint32         `json:"report_location_flag,omitempty"`
	IsReportEnter      *uint32         `json:"isreportenter,omitempty"`
	HomeURL            *string         `json:"home_url,omitempty"`
	PublishStatus      *uint32         `json:"customized_publish_status,omitempty"`
}

// AllowUserInfos lists the users with access to an agent
type AllowUserInfos struct {
	Users []AllowUser `json:"user"`
}

// AllowUser is one user id in an agent's visibility list
type AllowUser struct {
	UserID string `json:"userid"`
}

// AllowParties lists the departments with access to an agent
type AllowParties struct {
	PartyIDs []uint32 `json:"partyid"`
}

// AllowTags lists the tags with access to an agent
type AllowTags struct {
	TagIDs []uint32 `json:"tagid"`
}

// DepartmentList is the payload of the department list endpoint
type DepartmentList struct {
	Status
	Departments []Department `json:"department"`
}

// Department is one node of the department tree; root departments carry
// no parent id
type Department struct {
	ID       uint32  `json:"id"`
	Name     string  `json:"name"`
	ParentID *uint32 `json:"parentid,omitempty"`
	Order    uint32  `json:"order"`
}

// DepartmentMemberList is the payload of the department member endpoint
type DepartmentMemberList struct {
	Status
	Members []Member `json:"userlist"`
}

// Member is one user record as returned by the department member endpoint
type Member struct {
	Name           string         `json:"name"`
	Departments    []uint32       `json:"department"`
	Position       string         `json:"position"`
	Mobile         string         `json:"mobile"`
	Gender         string         `json:"gender"`
	Email          string         `json:"email"`
	Avatar         string         `json:"avatar"`
	IsLeader       uint32         `json:"isleader"`
	Status         uint32         `json:"status"`
	Enable         uint32         `json:"enable"`
	HideMobile     uint32         `json:"hide_mobile"`
	EnglishName    string         `json:"english_name"`
	Telephone      string         `json:"telephone"`
	Order          []uint32       `json:"order"`
	MainDepartment *uint32        `json:"main_department,omitempty"`
	QRCode         string         `json:"qr_code"`
	Alias          string         `json:"alias"`
	IsLeaderInDept []uint32       `json:"is_leader_in_dept"`
	ThumbAvatar    string         `json:"thumb_avatar"`
	BizMail        *string        `json:"biz_mail,omitempty"`
	UserID         string         `json:"userid"`
	ExtAttr        map[string]any `json:"extattr"`
}

// TagList is the payload of the tag list endpoint
type TagList struct {
	Status
	Tags []Tag `json:"taglist"`
}

// Tag is one contact tag
type Tag struct {
	ID   uint32 `json:"tagid"`
	Name string `json:"tagname"`
}

// TagMemberList is the payload of the per-tag member endpoint
type TagMemberList struct {
	Status
	Members  []TagMember `json:"userlist"`
	PartyIDs []uint32    `json:"partylist"`
	TagName  string      `json:"tagname"`
}

// TagMember is one user attached to a tag
type TagMember struct {
	UserID string `json:"userid"`
	Name   string `json:"name"`
}
