package domain

import "time"

type UserStatus string

const (
	StatusAdmin   UserStatus = "admin"
	StatusActive  UserStatus = "active"
	StatusPending UserStatus = "pending"
	StatusBanned  UserStatus = "ban"
)

// User state values stored in the sheet; they mirror the menu the user
// last landed in so the bot can resume after a restart.
const (
	StateMainMenu        = "main_menu"
	StateAdminMenu       = "admin_menu"
	StateWaitingReferral = "waiting_referral"
)

type ReferralStatus string

// Wire values match what the admins see in the spreadsheet.
const (
	ReferralUnset     ReferralStatus = ""
	ReferralAsked     ReferralStatus = "ask"
	ReferralConfirmed ReferralStatus = "ok"
	ReferralDeclined  ReferralStatus = "notsure"
)

// ReferralSlot is one of the two vouching records attached to a pending
// user. PromptMessageID remembers the confirmation prompt sent to the
// referrer so a stale prompt can be retracted once the other slot
// resolves the onboarding.
type ReferralSlot struct {
	ReferrerID      string
	ReferrerName    string
	Status          ReferralStatus
	PromptMessageID int
}

func (s ReferralSlot) Empty() bool { return s.ReferrerID == "" }

type User struct {
	ID       string
	Username string
	Status   UserStatus
	State    string
	Slots    [2]ReferralSlot
}

type RequestStatus string

const (
	RequestPendingReview RequestStatus = "check"
	RequestInProgress    RequestStatus = "run"
	RequestCompleted     RequestStatus = "done"
	RequestCancelled     RequestStatus = "cancel"
)

// Active reports whether the request still awaits an admin decision.
func (s RequestStatus) Active() bool {
	return s == RequestPendingReview || s == RequestInProgress
}

// Terminal statuses admit no further transition.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestCancelled
}

type Request struct {
	ID        string
	UserID    string
	Username  string
	Source    string
	Target    string
	Amount    float64
	Result    int64
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rate is one row of the admin-curated rates sheet. Read-only from the
// bot's perspective; duplicate rows for a pair may exist, the first one
// in sheet order wins when quoting.
type Rate struct {
	Source    string
	Target    string
	Rate      float64
	MinAmount float64
}
