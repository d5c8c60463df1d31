package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/repository"
	"github.com/nkozdemir/fakestore-backend/services"
)

// --- Mock cart repository ---

type mockCartRepo struct {
	carts        map[int]*models.Cart
	nextID       int
	replaceCalls int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[int]*models.Cart), nextID: 1}
}

func (m *mockCartRepo) snapshot(cart *models.Cart) *models.Cart {
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied
}

func (m *mockCartRepo) FindByID(_ context.Context, id int) (*models.Cart, error) {
	cart, ok := m.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.snapshot(cart), nil
}

func (m *mockCartRepo) FindByOwner(_ context.Context, userID int) (*models.Cart, error) {
	for _, cart := range m.carts {
		if cart.UserID == userID {
			return m.snapshot(cart), nil
		}
	}
	return nil, nil
}

func (m *mockCartRepo) FindAll(_ context.Context, userID *int) ([]models.Cart, error) {
	var out []models.Cart
	for _, cart := range m.carts {
		if userID != nil && cart.UserID != *userID {
			continue
		}
		out = append(out, *m.snapshot(cart))
	}
	return out, nil
}

func (m *mockCartRepo) Create(_ context.Context, cart *models.Cart) error {
	cart.ID = m.nextID
	m.nextID++
	m.carts[cart.ID] = m.snapshot(cart)
	return nil
}

func (m *mockCartRepo) Replace(_ context.Context, cartID int, userID int, date time.Time, items []models.CartItem) error {
	m.replaceCalls++
	cart, ok := m.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.UserID = userID
	cart.Date = date
	cart.Items = append([]models.CartItem(nil), items...)
	return nil
}

func (m *mockCartRepo) Delete(_ context.Context, cartID int) error {
	if _, ok := m.carts[cartID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.carts, cartID)
	return nil
}

// --- Mock user repository ---

type mockUserRepo struct {
	users map[int]*models.User
	// carts receives signup carts created through CreateWithCart.
	carts *mockCartRepo
	// emailLookupErr, when set, is returned by FindByEmail to simulate a
	// failing store.
	emailLookupErr error
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	repo := &mockUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *mockUserRepo) FindByID(_ context.Context, id int) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.emailLookupErr != nil {
		return nil, m.emailLookupErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindAll(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = len(m.users) + 1
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) CreateWithCart(ctx context.Context, user *models.User, cart *models.Cart) error {
	if err := m.Create(ctx, user); err != nil {
		return err
	}
	cart.UserID = user.ID
	if m.carts != nil {
		return m.carts.Create(ctx, cart)
	}
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

var _ repository.CartRepository = (*mockCartRepo)(nil)
var _ repository.UserRepository = (*mockUserRepo)(nil)

// --- Helpers ---

func customer(id int) *models.User {
	return &models.User{ID: id, Username: "user", Role: models.RoleCustomer}
}

func staff(id int) *models.User {
	return &models.User{ID: id, Username: "staff", Role: models.RoleStaff}
}

func newTestCartService(carts *mockCartRepo, users *mockUserRepo) services.CartService {
	logger, _ := zap.NewDevelopment()
	return services.NewCartService(carts, users, logger)
}

func seedCart(carts *mockCartRepo, userID int, items ...models.CartItem) *models.Cart {
	cart := &models.Cart{UserID: userID, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Items: items}
	_ = carts.Create(context.Background(), cart)
	return cart
}

// --- Tests ---

func TestCartService_CreateCart_SecondCartConflicts(t *testing.T) {
	carts := newMockCartRepo()
	users := newMockUserRepo(customer(1))
	svc := newTestCartService(carts, users)
	principal := models.Principal{UserID: 1, Role: models.RoleCustomer}

	first, svcErr := svc.CreateCart(context.Background(), principal, &models.CartCreateRequest{})
	require.Nil(t, svcErr)
	require.NotNil(t, first)

	_, svcErr = svc.CreateCart(context.Background(), principal, &models.CartCreateRequest{})
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeConflict, svcErr.Code)
}

func TestCartService_CreateCart_OperatorRejected(t *testing.T) {
	svc := newTestCartService(newMockCartRepo(), newMockUserRepo())

	for _, role := range []models.Role{models.RoleStaff, models.RoleAdmin} {
		_, svcErr := svc.CreateCart(context.Background(), models.Principal{UserID: 9, Role: role}, &models.CartCreateRequest{})
		require.NotNil(t, svcErr)
		assert.Equal(t, services.CodeValidationError, svcErr.Code)
	}
}

func TestCartService_CreateCart_SeedsValidatedItems(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockUserRepo(customer(1)))
	principal := models.Principal{UserID: 1, Role: models.RoleCustomer}

	cart, svcErr := svc.CreateCart(context.Background(), principal, &models.CartCreateRequest{
		Date:     "2024-06-01",
		Products: []models.CartItemInput{{ProductID: 3, Quantity: 2}},
	})
	require.Nil(t, svcErr)
	assert.Equal(t, map[int]int{3: 2}, itemMap(cart.Items))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), cart.Date)
}

func TestCartService_GetCart_OwnershipEnforced(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockUserRepo())
	cart := seedCart(carts, 1)

	// Owner reads fine.
	_, svcErr := svc.GetCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, cart.ID)
	assert.Nil(t, svcErr)

	// Another customer is forbidden.
	_, svcErr = svc.GetCart(context.Background(), models.Principal{UserID: 2, Role: models.RoleCustomer}, cart.ID)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeForbidden, svcErr.Code)

	// Staff succeeds on the same call.
	_, svcErr = svc.GetCart(context.Background(), models.Principal{UserID: 99, Role: models.RoleStaff}, cart.ID)
	assert.Nil(t, svcErr)
}

func TestCartService_GetCart_NotFound(t *testing.T) {
	svc := newTestCartService(newMockCartRepo(), newMockUserRepo())

	_, svcErr := svc.GetCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleStaff}, 404)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeNotFound, svcErr.Code)
}

func TestCartService_ListCarts_CustomerScoping(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(carts, 1)
	seedCart(carts, 2)
	svc := newTestCartService(carts, newMockUserRepo())

	// Customer listing everything is forbidden.
	_, svcErr := svc.ListCarts(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, nil)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeForbidden, svcErr.Code)

	// Customer scoped to their own id sees only their cart.
	self := 1
	own, svcErr := svc.ListCarts(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, &self)
	require.Nil(t, svcErr)
	require.Len(t, own, 1)
	assert.Equal(t, 1, own[0].UserID)

	// Staff sees everything.
	all, svcErr := svc.ListCarts(context.Background(), models.Principal{UserID: 99, Role: models.RoleStaff}, nil)
	require.Nil(t, svcErr)
	assert.Len(t, all, 2)
}

func TestCartService_PatchCart_AppliesScenario(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockUserRepo())
	cart := seedCart(carts, 1, models.CartItem{ProductID: 5, Quantity: 3})

	updated, svcErr := svc.PatchCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, cart.ID, &models.CartPatchRequest{
		Add:    []models.CartItemInput{{ProductID: 5, Quantity: 2}},
		Update: []models.CartItemInput{{ProductID: 9, Quantity: 1}},
		Remove: []int{5},
	})

	require.Nil(t, svcErr)
	assert.Equal(t, map[int]int{9: 1}, itemMap(updated.Items))
	assert.Equal(t, map[int]int{9: 1}, itemMap(carts.carts[cart.ID].Items))
}

func TestCartService_PatchCart_InvalidBatchLeavesCartUnchanged(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockUserRepo())
	cart := seedCart(carts, 1, models.CartItem{ProductID: 5, Quantity: 3})

	_, svcErr := svc.PatchCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, cart.ID, &models.CartPatchRequest{
		Add:    []models.CartItemInput{{ProductID: 7, Quantity: 2}},
		Update: []models.CartItemInput{{ProductID: 5, Quantity: -5}},
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeValidationError, svcErr.Code)
	assert.Equal(t, 5, svcErr.Details["productId"])
	assert.Equal(t, -5, svcErr.Details["quantity"])
	assert.Equal(t, 0, carts.replaceCalls, "nothing persists on validation failure")
	assert.Equal(t, map[int]int{5: 3}, itemMap(carts.carts[cart.ID].Items))
}

func TestCartService_PatchCart_UpdatesDate(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockUserRepo())
	cart := seedCart(carts, 1)

	updated, svcErr := svc.PatchCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, cart.ID, &models.CartPatchRequest{
		Date: "2025-02-10T18:00:00Z",
	})

	require.Nil(t, svcErr)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), updated.Date)
}

func TestCartService_PatchCart_CustomerCannotReassign(t *testing.T) {
	carts := newMockCartRepo()
	users := newMockUserRepo(customer(1), customer(2))
	svc := newTestCartService(carts, users)
	cart := seedCart(carts, 1)

	target := 2
	_, svcErr := svc.PatchCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, cart.ID, &models.CartPatchRequest{
		UserID: &target,
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeForbidden, svcErr.Code)
	assert.Equal(t, 1, carts.carts[cart.ID].UserID)
}

func TestCartService_PatchCart_StaffReassigns(t *testing.T) {
	carts := newMockCartRepo()
	users := newMockUserRepo(customer(1), customer(2))
	svc := newTestCartService(carts, users)
	cart := seedCart(carts, 1)

	target := 2
	updated, svcErr := svc.PatchCart(context.Background(), models.Principal{UserID: 99, Role: models.RoleStaff}, cart.ID, &models.CartPatchRequest{
		UserID: &target,
	})

	require.Nil(t, svcErr)
	assert.Equal(t, 2, updated.UserID)
}

func TestCartService_PatchCart_ReassignConflictLeavesBothCartsUnchanged(t *testing.T) {
	carts := newMockCartRepo()
	users := newMockUserRepo(customer(1), customer(2))
	svc := newTestCartService(carts, users)
	cartA := seedCart(carts, 1, models.CartItem{ProductID: 1, Quantity: 1})
	cartB := seedCart(carts, 2, models.CartItem{ProductID: 2, Quantity: 2})

	target := 2
	_, svcErr := svc.PatchCart(context.Background(), models.Principal{UserID: 99, Role: models.RoleStaff}, cartA.ID, &models.CartPatchRequest{
		UserID: &target,
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeConflict, svcErr.Code)
	assert.Equal(t, 1, carts.carts[cartA.ID].UserID)
	assert.Equal(t, 2, carts.carts[cartB.ID].UserID)
	assert.Equal(t, map[int]int{1: 1}, itemMap(carts.carts[cartA.ID].Items))
	assert.Equal(t, map[int]int{2: 2}, itemMap(carts.carts[cartB.ID].Items))
}

func TestCartService_PatchCart_ReassignToOperatorRejected(t *testing.T) {
	carts := newMockCartRepo()
	users := newMockUserRepo(customer(1), staff(50))
	svc := newTestCartService(carts, users)
	cart := seedCart(carts, 1)

	target := 50
	_, svcErr := svc.PatchCart(context.Background(), models.Principal{UserID: 99, Role: models.RoleAdmin}, cart.ID, &models.CartPatchRequest{
		UserID: &target,
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeValidationError, svcErr.Code)
}

func TestCartService_PatchCart_ReassignToMissingUser(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockUserRepo(customer(1)))
	cart := seedCart(carts, 1)

	target := 404
	_, svcErr := svc.PatchCart(context.Background(), models.Principal{UserID: 99, Role: models.RoleStaff}, cart.ID, &models.CartPatchRequest{
		UserID: &target,
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeNotFound, svcErr.Code)
}

func TestCartService_ReplaceCart_RebuildsItems(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockUserRepo())
	cart := seedCart(carts, 1, models.CartItem{ProductID: 5, Quantity: 3})

	updated, svcErr := svc.ReplaceCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, cart.ID, &models.CartReplaceRequest{
		Products: []models.CartItemInput{{ProductID: 8, Quantity: 4}},
	})

	require.Nil(t, svcErr)
	assert.Equal(t, map[int]int{8: 4}, itemMap(updated.Items))
}

func TestCartService_DeleteCart_RemovesCart(t *testing.T) {
	carts := newMockCartRepo()
	svc := newTestCartService(carts, newMockUserRepo())
	cart := seedCart(carts, 1)

	svcErr := svc.DeleteCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, cart.ID)
	require.Nil(t, svcErr)

	_, svcErr = svc.GetCart(context.Background(), models.Principal{UserID: 1, Role: models.RoleCustomer}, cart.ID)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeNotFound, svcErr.Code)
}
