package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/sheets"
)

// Sheet and column names of the Users table. Lookups are by header
// name, never by position, so admins may reorder columns freely.
const (
	UsersSheet = "Users"

	fUserID     = "USER_ID"
	fUsername   = "USERNAME"
	fUserStatus = "USER_STATUS"
	fUserState  = "USER_STATE"

	fRef1ID      = "REFERRAL1_ID"
	fRef1Name    = "REFERRAL1_USERNAME"
	fRef1Status  = "REFERRAL1_STATUS"
	fRef1Message = "REFERRAL1_MESSAGE_ID"
	fRef2ID      = "REFERRAL2_ID"
	fRef2Name    = "REFERRAL2_USERNAME"
	fRef2Status  = "REFERRAL2_STATUS"
	fRef2Message = "REFERRAL2_MESSAGE_ID"
)

var slotFields = [2]struct{ id, name, status, message string }{
	{fRef1ID, fRef1Name, fRef1Status, fRef1Message},
	{fRef2ID, fRef2Name, fRef2Status, fRef2Message},
}

type Users struct{ t *Table }

func NewUsers(src sheets.ValueSource, ttl time.Duration, log zerolog.Logger) *Users {
	return &Users{t: NewTable(src, UsersSheet, fUserID, ttl, log)}
}

func (r *Users) Get(ctx context.Context, id string) (domain.User, error) {
	rec, err := r.t.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return userFromRecord(rec), nil
}

func (r *Users) All(ctx context.Context) ([]domain.User, error) {
	recs, err := r.t.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, userFromRecord(rec))
	}
	return users, nil
}

// ByUsername finds a user by handle, case-insensitively, without the
// leading @.
func (r *Users) ByUsername(ctx context.Context, username string) (domain.User, error) {
	users, err := r.All(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user @%s: %w", username, domain.ErrNotFound)
}

func (r *Users) Admins(ctx context.Context) ([]domain.User, error) {
	users, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	var admins []domain.User
	for _, u := range users {
		if u.Status == domain.StatusAdmin {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

func (r *Users) Create(ctx context.Context, u domain.User) error {
	_, err := r.t.PutNew(ctx, Record{
		fUserID:     u.ID,
		fUsername:   u.Username,
		fUserStatus: string(u.Status),
		fUserState:  u.State,
	})
	return err
}

func (r *Users) SetStatus(ctx context.Context, id string, status domain.UserStatus, state string) error {
	fields := map[string]string{fUserStatus: string(status)}
	if state != "" {
		fields[fUserState] = state
	}
	return r.t.UpdateFields(ctx, id, fields)
}

// SetSlot writes one referral slot in full.
func (r *Users) SetSlot(ctx context.Context, id string, slot int, s domain.ReferralSlot) error {
	f := slotFields[slot]
	return r.t.UpdateFields(ctx, id, map[string]string{
		f.id:      s.ReferrerID,
		f.name:    s.ReferrerName,
		f.status:  string(s.Status),
		f.message: formatMessageID(s.PromptMessageID),
	})
}

func (r *Users) SetSlotStatus(ctx context.Context, id string, slot int, status domain.ReferralStatus) error {
	return r.t.UpdateFields(ctx, id, map[string]string{slotFields[slot].status: string(status)})
}

func (r *Users) SetSlotPrompt(ctx context.Context, id string, slot int, messageID int) error {
	return r.t.UpdateFields(ctx, id, map[string]string{slotFields[slot].message: formatMessageID(messageID)})
}

func userFromRecord(rec Record) domain.User {
	u := domain.User{
		ID:       rec[fUserID],
		Username: rec[fUsername],
		Status:   domain.UserStatus(rec[fUserStatus]),
		State:    rec[fUserState],
	}
	for i, f := range slotFields {
		u.Slots[i] = domain.ReferralSlot{
			ReferrerID:      rec[f.id],
			ReferrerName:    rec[f.name],
			Status:          domain.ReferralStatus(rec[f.status]),
			PromptMessageID: parseMessageID(rec[f.message]),
		}
	}
	return u
}

func formatMessageID(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

func parseMessageID(s string) int {
	id, _ := strconv.Atoi(s)
	return id
}
