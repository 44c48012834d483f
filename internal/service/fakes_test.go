package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
)

var errBoom = errors.New("boom")

var testNow = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeAccounts struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*domain.Account
}

func newFakeAccounts(accounts ...domain.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[string]*domain.Account{}}
	for i := range accounts {
		a := accounts[i]
		f.byID[a.ID] = &a
	}
	return f
}

func (f *fakeAccounts) Create(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if (account.Email != "" && a.Email == account.Email) || (account.Phone != "" && a.Phone == account.Phone) {
			return domain.ErrConflict
		}
	}
	f.seq++
	account.ID = fmt.Sprintf("acc-%d", f.seq)
	cp := *account
	f.byID[account.ID] = &cp
	return nil
}

func (f *fakeAccounts) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) find(match func(*domain.Account) bool) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAccounts) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = strings.ToLower(email)
	return f.find(func(a *domain.Account) bool { return a.Email == email })
}

func (f *fakeAccounts) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return f.find(func(a *domain.Account) bool { return a.Phone == phone })
}

func (f *fakeAccounts) FindByIDs(ctx context.Context, ids []string) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Account, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if a, ok := f.byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) ListPharmacists(ctx context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, a := range f.byID {
		if a.Role == domain.RolePharmacist {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[account.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *account
	f.byID[account.ID] = &cp
	return nil
}

func (f *fakeAccounts) SetPassword(ctx context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.OTPHash = ""
	a.OTPExpiresAt = nil
	return nil
}

func (f *fakeAccounts) SetOTP(ctx context.Context, id, otpHash string, expiresAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.OTPHash = otpHash
	a.OTPExpiresAt = expiresAt
	return nil
}

func (f *fakeAccounts) SetVerified(ctx context.Context, id string, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsVerified = verified
	return nil
}

type fakeMedicines struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*domain.Medicine
	order   []string
	listErr error
}

func newFakeMedicines(meds ...domain.Medicine) *fakeMedicines {
	f := &fakeMedicines{byID: map[string]*domain.Medicine{}}
	for i := range meds {
		m := meds[i]
		f.byID[m.ID] = &m
		f.order = append(f.order, m.ID)
	}
	return f
}

func (f *fakeMedicines) stock(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Stock
}

func (f *fakeMedicines) Create(ctx context.Context, medicine *domain.Medicine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.PharmacistID == medicine.PharmacistID && m.BatchNumber == medicine.BatchNumber {
			return domain.ErrConflict
		}
	}
	f.seq++
	medicine.ID = fmt.Sprintf("med-new-%d", f.seq)
	cp := *medicine
	f.byID[medicine.ID] = &cp
	f.order = append(f.order, medicine.ID)
	return nil
}

func (f *fakeMedicines) FindByID(ctx context.Context, id string) (*domain.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMedicines) ListByPharmacist(ctx context.Context, pharmacistID string) ([]domain.Medicine, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Medicine
	for _, id := range f.order {
		if m, ok := f.byID[id]; ok && m.PharmacistID == pharmacistID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMedicines) SearchInStock(ctx context.Context, query string) ([]domain.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Medicine
	for _, id := range f.order {
		m, ok := f.byID[id]
		if ok && m.Stock > 0 && strings.Contains(strings.ToLower(m.Name), strings.ToLower(query)) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMedicines) Update(ctx context.Context, medicine *domain.Medicine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[medicine.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *medicine
	f.byID[medicine.ID] = &cp
	return nil
}

func (f *fakeMedicines) Delete(ctx context.Context, id, pharmacistID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok || m.PharmacistID != pharmacistID {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeMedicines) DecrementStock(ctx context.Context, id string, qty int) (*domain.Medicine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.Stock < qty {
		return nil, domain.ErrConflict
	}
	m.Stock -= qty
	cp := *m
	return &cp, nil
}

func (f *fakeMedicines) IncrementStock(ctx context.Context, id string, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Stock += qty
	return nil
}

type fakeOrders struct {
	mu        sync.Mutex
	seq       int
	byID      map[string]*domain.Order
	order     []string
	createErr error
	listErr   error
	// beforeCreate runs ahead of every Create, afterUpdate once a status change is stored
	beforeCreate func()
	afterUpdate  func()
}

func newFakeOrders(orders ...domain.Order) *fakeOrders {
	f := &fakeOrders{byID: map[string]*domain.Order{}}
	for i := range orders {
		o := orders[i]
		f.byID[o.ID] = &o
		f.order = append(f.order, o.ID)
	}
	return f
}

func (f *fakeOrders) Create(ctx context.Context, order *domain.Order) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	order.ID = fmt.Sprintf("ord-new-%d", f.seq)
	order.CreatedAt = testNow
	cp := *order
	f.byID[order.ID] = &cp
	f.order = append(f.order, order.ID)
	return nil
}

func (f *fakeOrders) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByPharmacist(ctx context.Context, pharmacistID string, status domain.OrderStatus) ([]domain.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, id := range f.order {
		o := f.byID[id]
		if o.PharmacistID == pharmacistID && (status == "" || o.Status == status) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, id := range f.order {
		if o := f.byID[id]; o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return domain.ErrConflict
	}
	o.Status = to
	if f.afterUpdate != nil {
		f.afterUpdate()
	}
	return nil
}

type fakePrescriptions struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*domain.Prescription
}

func newFakePrescriptions(list ...domain.Prescription) *fakePrescriptions {
	f := &fakePrescriptions{byID: map[string]*domain.Prescription{}}
	for i := range list {
		p := list[i]
		f.byID[p.ID] = &p
	}
	return f
}

func (f *fakePrescriptions) get(id string) domain.Prescription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

func (f *fakePrescriptions) Create(ctx context.Context, p *domain.Prescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = fmt.Sprintf("rx-new-%d", f.seq)
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePrescriptions) FindByID(ctx context.Context, id string) (*domain.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrescriptions) ListByCustomer(ctx context.Context, customerID string) ([]domain.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Prescription
	for _, p := range f.byID {
		if p.CustomerID == customerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePrescriptions) ListPending(ctx context.Context) ([]domain.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Prescription
	for _, p := range f.byID {
		if p.Status == domain.PrescriptionPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePrescriptions) pending(id string) (*domain.Prescription, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Status != domain.PrescriptionPending {
		return nil, domain.ErrConflict
	}
	return p, nil
}

func (f *fakePrescriptions) SaveQuote(ctx context.Context, id, pharmacistID string, items []domain.LineItem, total float64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pending(id)
	if err != nil {
		return err
	}
	p.Items = items
	p.Total = total
	p.QuotedBy = pharmacistID
	p.QuotedAt = &at
	return nil
}

func (f *fakePrescriptions) Approve(ctx context.Context, id, pharmacistID string, at time.Time) (*domain.Prescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pending(id)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PrescriptionApproved
	p.ApprovedBy = pharmacistID
	approved := *p
	return &approved, nil
}

func (f *fakePrescriptions) RevertApproval(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.Status != domain.PrescriptionApproved || p.OrderID != "" {
		return domain.ErrConflict
	}
	p.Status = domain.PrescriptionPending
	p.ApprovedBy = ""
	return nil
}

func (f *fakePrescriptions) SetOrderID(ctx context.Context, id, orderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.OrderID = orderID
	return nil
}

func (f *fakePrescriptions) Reject(ctx context.Context, id, pharmacistID, reason string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pending(id)
	if err != nil {
		return err
	}
	p.Status = domain.PrescriptionRejected
	p.RejectionReason = reason
	return nil
}

type fakeNotifications struct {
	mu        sync.Mutex
	seq       int
	items     []domain.Notification
	createErr error
}

func (f *fakeNotifications) Create(ctx context.Context, n *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	n.ID = fmt.Sprintf("n-%d", f.seq)
	n.CreatedAt = testNow
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) ofType(kind domain.NotificationType) []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.items {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotifications) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.items {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.items {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, id, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].RecipientID == recipientID {
			f.items[i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeNotifications) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for i := range f.items {
		if f.items[i].RecipientID == recipientID && !f.items[i].Read {
			f.items[i].Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) Delete(ctx context.Context, id, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].RecipientID == recipientID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeNotifications) ExistsSince(ctx context.Context, recipientID string, kind domain.NotificationType, medicineID string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.RecipientID == recipientID && n.Type == kind && n.MedicineID == medicineID && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeSnapshots struct {
	mu    sync.Mutex
	saved map[string]domain.AlertSnapshot
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{saved: map[string]domain.AlertSnapshot{}}
}

func (f *fakeSnapshots) Upsert(ctx context.Context, snapshot domain.AlertSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[snapshot.PharmacistID+"|"+snapshot.SnapshotDate.Format("2006-01-02")] = snapshot
	return nil
}

func (f *fakeSnapshots) History(ctx context.Context, pharmacistID string, days int) ([]domain.AlertSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AlertSnapshot
	for _, s := range f.saved {
		if s.PharmacistID == pharmacistID {
			out = append(out, s)
		}
	}
	return out, nil
}

// countingReportCache remembers what was stored and invalidated
type countingReportCache struct {
	mu          sync.Mutex
	reports     map[string]*domain.AnalyticsReport
	invalidated []string
}

func newCountingReportCache() *countingReportCache {
	return &countingReportCache{reports: map[string]*domain.AnalyticsReport{}}
}

func (c *countingReportCache) GetReport(ctx context.Context, pharmacistID string) (*domain.AnalyticsReport, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[pharmacistID]
	return r, ok, nil
}

func (c *countingReportCache) SetReport(ctx context.Context, pharmacistID string, report *domain.AnalyticsReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[pharmacistID] = report
	return nil
}

func (c *countingReportCache) Invalidate(ctx context.Context, pharmacistID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, pharmacistID)
	c.invalidated = append(c.invalidated, pharmacistID)
	return nil
}

func (c *countingReportCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = map[string]*domain.AnalyticsReport{}
	return nil
}

// countingSearchCache only counts invalidations
type countingSearchCache struct {
	mu          sync.Mutex
	invalidated int
}

func (c *countingSearchCache) GetResults(ctx context.Context, query, postalCode string) ([]domain.SearchResult, bool, error) {
	return nil, false, nil
}

func (c *countingSearchCache) SetResults(ctx context.Context, query, postalCode string, results []domain.SearchResult) error {
	return nil
}

func (c *countingSearchCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

func (c *countingSearchCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (s *memoryStorage) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memoryStorage) ObjectURL(ctx context.Context, key string) (string, error) {
	return "https://files.test/" + key, nil
}

func (s *memoryStorage) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type recordingOTPSender struct {
	codes map[string]string
}

func (r *recordingOTPSender) SendOTP(ctx context.Context, account domain.Account, code string) error {
	if r.codes == nil {
		r.codes = map[string]string{}
	}
	r.codes[account.ID] = code
	return nil
}

func pharmacist(id, postal string) domain.Account {
	return domain.Account{
		ID:           id,
		Name:         "Pharmacist " + id,
		Email:        id + "@pharma.test",
		Role:         domain.RolePharmacist,
		PharmacyName: "Pharmacy " + id,
		PostalCode:   postal,
		IsAvailable:  true,
		IsVerified:   true,
	}
}

func customer(id, postal string) domain.Account {
	return domain.Account{
		ID:         id,
		Name:       "Customer " + id,
		Email:      id + "@mail.test",
		Phone:      "+1555" + id,
		Role:       domain.RoleCustomer,
		Address:    "1 Main St",
		PostalCode: postal,
		IsVerified: true,
	}
}

func medicine(id, owner, name string, stock int, price float64) domain.Medicine {
	return domain.Medicine{
		ID:           id,
		PharmacistID: owner,
		Name:         name,
		BatchNumber:  "B-" + id,
		Category:     "Pain Relief",
		Stock:        stock,
		ReorderLevel: domain.DefaultReorderLevel,
		Price:        price,
		ExpiryDate:   testNow.AddDate(1, 0, 0),
	}
}
