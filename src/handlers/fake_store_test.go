package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	db "rfpdesk-server/src/db/sql"
	"rfpdesk-server/src/middleware"
	"rfpdesk-server/src/models"
	"rfpdesk-server/src/section"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu          sync.Mutex
	persons     map[string]models.Person
	proposals   map[string]models.Proposal
	rows        map[string][]models.BudgetRow
	responses   map[string]models.Response
	sections    map[string]models.Section
	reqs        map[string][]models.Requirement
	users       map[string]models.User
	invitations map[int64]models.Invitation
	nextID      int64
	saves       int
	cleared     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		persons:     map[string]models.Person{},
		proposals:   map[string]models.Proposal{},
		rows:        map[string][]models.BudgetRow{},
		responses:   map[string]models.Response{},
		sections:    map[string]models.Section{},
		reqs:        map[string][]models.Requirement{},
		users:       map[string]models.User{},
		invitations: map[int64]models.Invitation{},
	}
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, db.ErrNotFound)
}

func (f *fakeStore) ListPersons(ctx context.Context) ([]models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Person, 0, len(f.persons))
	for _, p := range f.persons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (f *fakeStore) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.persons[id]
	if !ok {
		return nil, notFound("get person")
	}
	return &p, nil
}

func (f *fakeStore) CreatePerson(ctx context.Context, p *models.Person) (*models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persons[p.ID] = *p
	created := *p
	return &created, nil
}

func (f *fakeStore) CreateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proposals[p.ID] = *p
	created := *p
	return &created, nil
}

func (f *fakeStore) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.proposals[id]
	if !ok {
		return nil, notFound("get proposal")
	}
	return &p, nil
}

func (f *fakeStore) ListProposals(ctx context.Context) ([]models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Proposal
	for _, p := range f.proposals {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) UpdateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.proposals[p.ID]; !ok {
		return nil, notFound("update proposal")
	}
	f.proposals[p.ID] = *p
	updated := *p
	return &updated, nil
}

func (f *fakeStore) DeleteProposal(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.proposals[id]; !ok {
		return notFound("delete proposal")
	}
	delete(f.proposals, id)
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) LoadRows(ctx context.Context, proposalID string) ([]models.BudgetRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.BudgetRow(nil), f.rows[proposalID]...), nil
}

func (f *fakeStore) SaveRows(ctx context.Context, proposalID string, rows []models.BudgetRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.rows[proposalID] = append([]models.BudgetRow(nil), rows...)
	return nil
}

func (f *fakeStore) CreateResponse(ctx context.Context, r *models.Response) (*models.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[r.ID] = *r
	created := *r
	return &created, nil
}

func (f *fakeStore) GetResponse(ctx context.Context, id string) (*models.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.responses[id]
	if !ok {
		return nil, notFound("get response")
	}
	return &r, nil
}

func (f *fakeStore) ListResponses(ctx context.Context, proposalID string) ([]models.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Response
	for _, r := range f.responses {
		if r.ProposalID == proposalID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) LoadSections(ctx context.Context, responseID string) ([]models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Section
	for _, s := range f.sections {
		if s.ResponseID == responseID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeStore) GetSection(ctx context.Context, id string) (*models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sections[id]
	if !ok {
		return nil, notFound("get section")
	}
	return &s, nil
}

func (f *fakeStore) CreateSection(ctx context.Context, s *models.Section) (*models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections[s.ID] = *s
	created := *s
	return &created, nil
}

func (f *fakeStore) CreateSections(ctx context.Context, secs []models.Section) ([]models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range secs {
		f.sections[s.ID] = s
	}
	return append([]models.Section(nil), secs...), nil
}

func (f *fakeStore) UpdateSection(ctx context.Context, s *models.Section) (*models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sections[s.ID]
	if !ok {
		return nil, notFound("update section")
	}
	if stored.Version != s.Version {
		return nil, db.ErrVersionConflict
	}
	updated := *s
	updated.Version++
	f.sections[s.ID] = updated
	return &updated, nil
}

func (f *fakeStore) DeleteSection(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sections[id]; !ok {
		return notFound("delete section")
	}
	delete(f.sections, id)
	return nil
}

func (f *fakeStore) InsertRequirements(ctx context.Context, reqs []models.Requirement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range reqs {
		f.reqs[r.ProposalID] = append(f.reqs[r.ProposalID], r)
	}
	return nil
}

func (f *fakeStore) ListRequirements(ctx context.Context, proposalID string) ([]models.Requirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Requirement(nil), f.reqs[proposalID]...), nil
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, notFound("get user")
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("get user")
}

func (f *fakeStore) GetInvitationByEmail(ctx context.Context, email string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if strings.EqualFold(inv.Email, email) {
			return &inv, nil
		}
	}
	return nil, notFound("get invitation")
}

func (f *fakeStore) CreateUser(ctx context.Context, req models.RegisterRequest, hashedPassword []byte, inv *models.Invitation) (*models.RegisterResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == req.Username || u.Email == req.Email {
			return nil, fmt.Errorf("create user: %w", db.ErrConflict)
		}
	}
	f.nextID++
	f.users[req.Username] = models.User{
		ID:           f.nextID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		PersonID:     inv.PersonID,
		Manager:      inv.Manager,
	}
	delete(f.invitations, inv.ID)
	return &models.RegisterResponse{
		ID:       f.nextID,
		Email:    req.Email,
		Username: req.Username,
		PersonID: inv.PersonID,
		Manager:  inv.Manager,
	}, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, notFound("get user")
}

func (f *fakeStore) UpdateUserPassword(ctx context.Context, userID int64, hashedPassword []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, u := range f.users {
		if u.ID == userID {
			u.PasswordHash = hashedPassword
			f.users[name] = u
			return nil
		}
	}
	return notFound("update password")
}

func (f *fakeStore) UpdateUserLastLogin(ctx context.Context, userID int64) error {
	return nil
}

func (f *fakeStore) CreateInvitation(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := *inv
	created.ID = f.nextID
	f.invitations[created.ID] = created
	return &created, nil
}

func (f *fakeStore) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Invitation
	for _, inv := range f.invitations {
		out = append(out, inv)
	}
	return out, nil
}

func (f *fakeStore) DeleteInvitation(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.invitations[id]; !ok {
		return notFound("delete invitation")
	}
	delete(f.invitations, id)
	return nil
}

func (f *fakeStore) ClearCache(name string) error {
	if name != "persons" && name != "budgets" {
		return fmt.Errorf("unknown cache %q", name)
	}
	f.cleared = append(f.cleared, name)
	return nil
}

var _ Store = (*fakeStore)(nil)

var (
	manager = section.Actor{ID: "p-sarah", Manager: true}
	member  = section.Actor{ID: "p-marco"}
	other   = section.Actor{ID: "p-ines"}
)

func seedStore() *fakeStore {
	f := newFakeStore()
	f.persons["p-sarah"] = models.Person{ID: "p-sarah", FullName: "Sarah Chen", Title: "Principal"}
	f.persons["p-marco"] = models.Person{ID: "p-marco", FullName: "Marco Diaz", Title: "Senior Consultant"}
	f.persons["p-ines"] = models.Person{ID: "p-ines", FullName: "Ines Ruiz", Title: "Data Engineer"}
	f.proposals["prop-1"] = models.Proposal{ID: "prop-1", Title: "Data Platform", Agency: "GSA", Stage: "draft", CreatedBy: "p-sarah"}
	f.responses["resp-1"] = models.Response{ID: "resp-1", ProposalID: "prop-1", Title: "Technical Volume"}
	return f
}

// call routes one request through a chi router so URL params resolve.
func call(t *testing.T, method, pattern, path string, h http.HandlerFunc, actor section.Actor, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), actor)))
		})
	})
	r.MethodFunc(method, pattern, h)

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	ts := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
	return ts
}
