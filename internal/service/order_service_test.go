package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/migrate"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"storefront-service/pkg/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockEventBus
type MockEventBus struct {
	PublishOrderCreatedFunc       func(ctx context.Context, e service.OrderCreatedEvent) error
	PublishOrderStatusChangedFunc func(ctx context.Context, e service.OrderStatusChangedEvent) error

	Created []service.OrderCreatedEvent
	Changed []service.OrderStatusChangedEvent
}

func (m *MockEventBus) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	m.Created = append(m.Created, e)
	if m.PublishOrderCreatedFunc != nil {
		return m.PublishOrderCreatedFunc(ctx, e)
	}
	return nil
}

func (m *MockEventBus) PublishOrderStatusChanged(ctx context.Context, e service.OrderStatusChangedEvent) error {
	m.Changed = append(m.Changed, e)
	if m.PublishOrderStatusChangedFunc != nil {
		return m.PublishOrderStatusChangedFunc(ctx, e)
	}
	return nil
}

// collidingOrderRepo отвечает ErrDuplicateOrderNumber первые failures раз
type collidingOrderRepo struct {
	repository.OrderRepo
	failures int
	calls    int
}

func (r *collidingOrderRepo) CreateWithItems(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	r.calls++
	if r.calls <= r.failures {
		return repository.ErrDuplicateOrderNumber
	}
	return r.OrderRepo.CreateWithItems(ctx, o, items)
}

var fixedNow = time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repos  *repository.Repository
	events *MockEventBus
	svc    service.OrderService
	// товар price 50, discount_percentage 10 → 45
	scarf *models.Product
	// товар без скидки
	mug *models.Product
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func setup(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	db := testutil.SetupTestSQLite(t)
	if err := migrate.MigrateStoreDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repos := repository.New(db)

	scarf := &models.Product{Name: "Silk Scarf", Price: dec("50"), DiscountPercentage: decPtr("10"), InStock: true}
	mug := &models.Product{Name: "Mug", Price: dec("12.50"), InStock: true}
	for _, p := range []*models.Product{scarf, mug} {
		require.NoError(t, repos.Products.Create(context.Background(), p))
	}

	events := &MockEventBus{}
	opts = append([]service.Option{service.WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{
		repos:  repos,
		events: events,
		svc:    service.NewOrderService(repos.Orders, repos.Products, events, zap.NewNop(), opts...),
		scarf:  scarf,
		mug:    mug,
	}
}

func validInput(f *fixture) service.CreateOrderInput {
	return service.CreateOrderInput{
		CustomerName:    "Sara Haddad",
		CustomerPhone:   "+96170000000",
		ShippingAddress: "Hamra St. 12",
		PaymentMethod:   models.PaymentMethodCashOnDelivery,
		Items: []service.CreateOrderItem{
			{ProductID: f.scarf.ID, ProductName: "Silk Scarf", Quantity: 2, Price: decPtr("45"), Total: decPtr("90")},
		},
	}
}

func countOrders(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.repos.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestCreateOrder_WorkedExample(t *testing.T) {
	f := setup(t)
	in := validInput(f)
	in.TotalAmount = decPtr("90")

	ord, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d+-[0-9A-Z]{5}$`, ord.OrderNumber)
	assert.True(t, ord.TotalAmount.Equal(dec("90")))
	assert.Equal(t, models.OrderStatusPending, ord.OrderStatus)
	assert.Equal(t, models.PaymentStatusPending, ord.PaymentStatus)

	stored, err := f.repos.Orders.GetByID(context.Background(), ord.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].Total.Equal(dec("90")))
	assert.True(t, stored.Items[0].Price.Equal(dec("45")))
	assert.True(t, stored.TotalAmount.Equal(dec("90")))

	require.Len(t, f.events.Created, 1)
	assert.Equal(t, ord.OrderNumber, f.events.Created[0].OrderNumber)
	assert.Equal(t, service.EventOrderCreated, f.events.Created[0].Type)
}

func TestCreateOrder_ServerPricesWhenClientOmitsThem(t *testing.T) {
	f := setup(t)
	in := validInput(f)
	in.Items = []service.CreateOrderItem{
		{ProductID: f.scarf.ID, Quantity: 1},
		{ProductID: f.mug.ID, ProductName: "Hacked name", Quantity: 3},
	}

	ord, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	// 45 + 3 × 12.50
	assert.True(t, ord.TotalAmount.Equal(dec("82.5")), ord.TotalAmount.String())

	stored, err := f.repos.Orders.GetByID(context.Background(), ord.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Mug", stored.Items[1].ProductName, "name must be snapshotted from the catalogue")
}

func TestCreateOrder_PriceWithinEpsilonAccepted(t *testing.T) {
	f := setup(t)
	in := validInput(f)
	in.Items[0].Price = decPtr("45.01")
	in.Items[0].Total = decPtr("89.99")

	ord, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, ord.TotalAmount.Equal(dec("90")), "server values are persisted")
}

func TestCreateOrder_PriceMismatch(t *testing.T) {
	f := setup(t)

	in := validInput(f)
	in.Items[0].Price = decPtr("50") // цена без скидки
	_, err := f.svc.CreateOrder(context.Background(), in)
	assert.True(t, errors.Is(err, service.ErrPriceMismatch), "got %v", err)

	in = validInput(f)
	in.Items[0].Total = decPtr("80")
	_, err = f.svc.CreateOrder(context.Background(), in)
	assert.True(t, errors.Is(err, service.ErrPriceMismatch), "got %v", err)

	in = validInput(f)
	in.TotalAmount = decPtr("10")
	_, err = f.svc.CreateOrder(context.Background(), in)
	assert.True(t, errors.Is(err, service.ErrPriceMismatch), "got %v", err)

	assert.Zero(t, countOrders(t, f))
	assert.Empty(t, f.events.Created)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateOrder(context.Background(), service.CreateOrderInput{CustomerName: "   "})
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.True(t, errors.Is(err, service.ErrValidation))
	assert.Equal(t, "Missing required fields", verr.Message)

	fields := map[string]string{}
	for _, fv := range verr.Fields {
		fields[fv.Field] = fv.Tag
	}
	for _, name := range []string{"customer_name", "customer_phone", "shipping_address", "payment_method", "items"} {
		assert.Contains(t, fields, name)
	}

	in := validInput(f)
	in.PaymentMethod = "card"
	in.Items[0].Quantity = 0
	_, err = f.svc.CreateOrder(context.Background(), in)
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "Invalid order data", verr.Message)
	fields = map[string]string{}
	for _, fv := range verr.Fields {
		fields[fv.Field] = fv.Tag
	}
	assert.Equal(t, "oneof", fields["payment_method"])
	assert.Equal(t, "gt", fields["items[0].quantity"])

	assert.Zero(t, countOrders(t, f))
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	f := setup(t)
	in := validInput(f)
	in.Items = append(in.Items, service.CreateOrderItem{ProductID: 9999, ProductName: "Ghost", Quantity: 1})

	_, err := f.svc.CreateOrder(context.Background(), in)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "items[1].product_id", verr.Fields[0].Field)
	assert.Zero(t, countOrders(t, f))
}

func TestCreateOrder_RetriesOnOrderNumberCollision(t *testing.T) {
	f := setup(t)
	colliding := &collidingOrderRepo{OrderRepo: f.repos.Orders, failures: 2}

	gen := 0
	svc := service.NewOrderService(colliding, f.repos.Products, f.events, zap.NewNop(),
		service.WithOrderNumberGenerator(func(now time.Time) (string, error) {
			gen++
			return service.GenerateOrderNumber(now)
		}),
	)

	ord, err := svc.CreateOrder(context.Background(), validInput(f))
	require.NoError(t, err)
	assert.NotZero(t, ord.ID)
	assert.Equal(t, 3, colliding.calls)
	assert.Equal(t, 3, gen)
	assert.EqualValues(t, 1, countOrders(t, f))
}

func TestCreateOrder_GivesUpAfterFiveCollisions(t *testing.T) {
	f := setup(t)
	colliding := &collidingOrderRepo{OrderRepo: f.repos.Orders, failures: 100}
	svc := service.NewOrderService(colliding, f.repos.Products, f.events, zap.NewNop())

	_, err := svc.CreateOrder(context.Background(), validInput(f))
	assert.True(t, errors.Is(err, service.ErrOrderNumberExhausted), "got %v", err)
	assert.Equal(t, 5, colliding.calls)
	assert.Empty(t, f.events.Created)
}

func TestCreateOrder_RealCollisionIsRetried(t *testing.T) {
	f := setup(t)
	numbers := []string{"ORD-1-SAME0", "ORD-1-SAME0", "ORD-1-OTHER"}
	i := 0
	svc := service.NewOrderService(f.repos.Orders, f.repos.Products, nil, zap.NewNop(),
		service.WithOrderNumberGenerator(func(time.Time) (string, error) {
			n := numbers[i]
			i++
			return n, nil
		}),
	)

	first, err := svc.CreateOrder(context.Background(), validInput(f))
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-SAME0", first.OrderNumber)

	second, err := svc.CreateOrder(context.Background(), validInput(f))
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-OTHER", second.OrderNumber)
	assert.EqualValues(t, 2, countOrders(t, f))
}

func TestCreateOrder_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := setup(t)
	f.events.PublishOrderCreatedFunc = func(context.Context, service.OrderCreatedEvent) error {
		return errors.New("kafka down")
	}

	ord, err := f.svc.CreateOrder(context.Background(), validInput(f))
	require.NoError(t, err)
	assert.NotZero(t, ord.ID)
}

func TestTrackAndGetOrder(t *testing.T) {
	f := setup(t)
	ord, err := f.svc.CreateOrder(context.Background(), validInput(f))
	require.NoError(t, err)

	got, err := f.svc.TrackOrder(context.Background(), "  "+ord.OrderNumber+" ")
	require.NoError(t, err)
	assert.Equal(t, ord.ID, got.ID)
	assert.Len(t, got.Items, 1)

	_, err = f.svc.TrackOrder(context.Background(), "ORD-0-NONE0")
	assert.True(t, errors.Is(err, service.ErrOrderNotFound))
	_, err = f.svc.TrackOrder(context.Background(), "")
	assert.True(t, errors.Is(err, service.ErrOrderNotFound))

	_, err = f.svc.GetOrder(context.Background(), ord.ID+1)
	assert.True(t, errors.Is(err, service.ErrOrderNotFound))

	items, err := f.svc.ListOrderItems(context.Background(), ord.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func ptrOrder(s models.OrderStatus) *models.OrderStatus       { return &s }
func ptrPayment(s models.PaymentStatus) *models.PaymentStatus { return &s }

func TestUpdateStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ord, err := f.svc.CreateOrder(ctx, validInput(f))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, ord.ID, service.UpdateStatusInput{})
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "No updates provided", verr.Message)

	_, err = f.svc.UpdateStatus(ctx, ord.ID, service.UpdateStatusInput{OrderStatus: ptrOrder("lost")})
	assert.True(t, errors.Is(err, service.ErrValidation))

	_, err = f.svc.UpdateStatus(ctx, ord.ID+100, service.UpdateStatusInput{OrderStatus: ptrOrder(models.OrderStatusProcessing)})
	assert.True(t, errors.Is(err, service.ErrOrderNotFound))

	// только order_status, payment_status не трогаем
	upd, err := f.svc.UpdateStatus(ctx, ord.ID, service.UpdateStatusInput{OrderStatus: ptrOrder(models.OrderStatusShipped)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, upd.OrderStatus)
	assert.Equal(t, models.PaymentStatusPending, upd.PaymentStatus)
	require.Len(t, f.events.Changed, 1)
	assert.Equal(t, models.OrderStatusPending, f.events.Changed[0].PreviousOrderStatus)
	assert.Equal(t, models.OrderStatusShipped, f.events.Changed[0].OrderStatus)

	// тот же статус, без ошибки и без события
	_, err = f.svc.UpdateStatus(ctx, ord.ID, service.UpdateStatusInput{OrderStatus: ptrOrder(models.OrderStatusShipped)})
	require.NoError(t, err)
	assert.Len(t, f.events.Changed, 1)

	// назад нельзя
	_, err = f.svc.UpdateStatus(ctx, ord.ID, service.UpdateStatusInput{OrderStatus: ptrOrder(models.OrderStatusProcessing)})
	assert.True(t, errors.Is(err, service.ErrInvalidTransition))

	upd, err = f.svc.UpdateStatus(ctx, ord.ID, service.UpdateStatusInput{
		OrderStatus:   ptrOrder(models.OrderStatusDelivered),
		PaymentStatus: ptrPayment(models.PaymentStatusPaid),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, upd.OrderStatus)
	assert.Equal(t, models.PaymentStatusPaid, upd.PaymentStatus)

	// delivered терминален
	_, err = f.svc.UpdateStatus(ctx, ord.ID, service.UpdateStatusInput{OrderStatus: ptrOrder(models.OrderStatusCancelled)})
	assert.True(t, errors.Is(err, service.ErrInvalidTransition))

	got, err := f.svc.GetOrder(ctx, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.OrderStatus)
}

func TestListOrdersAndStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateOrder(ctx, validInput(f))
		require.NoError(t, err)
	}

	list, total, err := f.svc.ListOrders(ctx, service.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 2)
	assert.EqualValues(t, 1, list[0].ItemCount)

	_, _, err = f.svc.ListOrders(ctx, service.ListFilter{Status: ptrOrder("lost")})
	assert.True(t, errors.Is(err, service.ErrValidation))

	st, err := f.svc.StatsSummary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.TotalOrders)
	assert.EqualValues(t, 3, st.PendingOrders)
	assert.True(t, st.TotalRevenue.Round(2).Equal(dec("270")), st.TotalRevenue.String())
	assert.True(t, st.PaidRevenue.IsZero())
}

func TestUpdateStatus_RecordsAdminFromContext(t *testing.T) {
	f := setup(t)
	ord, err := f.svc.CreateOrder(context.Background(), validInput(f))
	require.NoError(t, err)

	ctx := service.WithAdmin(context.Background(), &service.Claims{UserID: 1, Username: "admin", Role: "admin"})
	_, err = f.svc.UpdateStatus(ctx, ord.ID, service.UpdateStatusInput{OrderStatus: ptrOrder(models.OrderStatusCancelled)})
	require.NoError(t, err)

	require.Len(t, f.events.Changed, 1)
	assert.Equal(t, "admin", f.events.Changed[0].ChangedBy)
	assert.Equal(t, fixedNow, f.events.Changed[0].ChangedAt)
}
