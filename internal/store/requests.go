package store

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/sheets"
)

const (
	RequestsSheet = "Requests"

	fRequestID   = "REQUEST_ID"
	fReqUserID   = "USER_ID"
	fReqUsername = "USERNAME"
	fReqSource   = "SOURCE_CURRENCY"
	fReqTarget   = "TARGET_CURRENCY"
	fReqAmount   = "AMOUNT"
	fReqResult   = "RESULT"
	fReqStatus   = "STATUS"
	fReqCreated  = "CREATED_AT"
	fReqUpdated  = "UPDATED_AT"
)

type Requests struct{ t *Table }

func NewRequests(src sheets.ValueSource, ttl time.Duration, log zerolog.Logger) *Requests {
	return &Requests{t: NewTable(src, RequestsSheet, fRequestID, ttl, log)}
}

func (r *Requests) Get(ctx context.Context, id string) (domain.Request, error) {
	rec, err := r.t.Get(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}
	return requestFromRecord(rec), nil
}

// Exists is the collision pre-check for generated request ids.
func (r *Requests) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.t.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (r *Requests) All(ctx context.Context) ([]domain.Request, error) {
	recs, err := r.t.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	requests := make([]domain.Request, 0, len(recs))
	for _, rec := range recs {
		requests = append(requests, requestFromRecord(rec))
	}
	return requests, nil
}

func (r *Requests) ByUser(ctx context.Context, userID string) ([]domain.Request, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Request
	for _, req := range all {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *Requests) Create(ctx context.Context, req domain.Request) error {
	_, err := r.t.PutNew(ctx, Record{
		fRequestID:   req.ID,
		fReqUserID:   req.UserID,
		fReqUsername: req.Username,
		fReqSource:   req.Source,
		fReqTarget:   req.Target,
		fReqAmount:   strconv.FormatFloat(req.Amount, 'f', -1, 64),
		fReqResult:   strconv.FormatInt(req.Result, 10),
		fReqStatus:   string(req.Status),
		fReqCreated:  req.CreatedAt.Format(time.RFC3339),
		fReqUpdated:  req.UpdatedAt.Format(time.RFC3339),
	})
	return err
}

func (r *Requests) SetStatus(ctx context.Context, id string, status domain.RequestStatus, at time.Time) error {
	return r.t.UpdateFields(ctx, id, map[string]string{
		fReqStatus:  string(status),
		fReqUpdated: at.Format(time.RFC3339),
	})
}

func requestFromRecord(rec Record) domain.Request {
	amount, _ := parseSheetNumber(rec[fReqAmount])
	result, _ := strconv.ParseInt(rec[fReqResult], 10, 64)
	created, _ := time.Parse(time.RFC3339, rec[fReqCreated])
	updated, _ := time.Parse(time.RFC3339, rec[fReqUpdated])
	return domain.Request{
		ID:        rec[fRequestID],
		UserID:    rec[fReqUserID],
		Username:  rec[fReqUsername],
		Source:    rec[fReqSource],
		Target:    rec[fReqTarget],
		Amount:    amount,
		Result:    result,
		Status:    domain.RequestStatus(rec[fReqStatus]),
		CreatedAt: created,
		UpdatedAt: updated,
	}
}
