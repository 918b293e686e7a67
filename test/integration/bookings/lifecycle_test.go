package bookings

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"resort/pkg/client"
	"resort/pkg/model"
	"resort/test/integration/testutil"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBookingLifecycle(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, catalog, bookings := env.Setup(t)
	defer env.Cleanup(t, mongo)

	seeded := testutil.SeedCatalog(t, catalog, "250.00", 1)

	t.Run("quote does not persist", func(t *testing.T) {
		resp, err := bookings.Quote(seeded.BookingRequest(0, 3, "quote@example.com"))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("quote: %s", resp.ToString())
		}
		if n := mongo.CountDocuments(t, testutil.BookingsCollection, bson.D{}); n != 0 {
			t.Errorf("bookings after quote = %d, want 0", n)
		}
	})

	var booking *model.Booking
	t.Run("create pending", func(t *testing.T) {
		resp, err := bookings.Create(seeded.BookingRequest(0, 3, "guest@example.com"))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create: %s", resp.ToString())
		}
		booking, err = bookings.DecodeBooking(resp)
		if err != nil {
			t.Fatal(err)
		}
		if booking.Status != model.BookingStatusPending || booking.Nights != 3 {
			t.Errorf("booking = %s/%d nights", booking.Status, booking.Nights)
		}
	})
	if booking == nil {
		t.FailNow()
	}

	t.Run("lookup by reference", func(t *testing.T) {
		resp, err := bookings.GetByReference(booking.Reference)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("lookup: %s", resp.ToString())
		}
	})

	t.Run("confirm consumes the last room", func(t *testing.T) {
		other, err := bookings.Create(seeded.BookingRequest(1, 1, "late@example.com"))
		if err != nil {
			t.Fatal(err)
		}
		second, err := decodeCreated(bookings, other)
		if err != nil {
			t.Fatal(err)
		}

		resp, err := bookings.Confirm(booking.ID)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("confirm: %s", resp.ToString())
		}

		resp, err = bookings.Confirm(second.ID)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("confirm over capacity = %d, want 409", resp.StatusCode)
		}
	})

	t.Run("cancel releases the room", func(t *testing.T) {
		resp, err := bookings.Cancel(booking.ID, "change of plans")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("cancel: %s", resp.ToString())
		}

		resp, err = bookings.Complete(booking.ID)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("complete cancelled booking = %d, want 409", resp.StatusCode)
		}
	})
}

func TestConcurrentConfirmations(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, catalog, bookings := env.Setup(t)
	defer env.Cleanup(t, mongo)

	const rooms, guests = 2, 6
	seeded := testutil.SeedCatalog(t, catalog, "180.00", rooms)

	ids := make([]string, 0, guests)
	for i := range guests {
		resp, err := bookings.Create(seeded.BookingRequest(2, 2, uuid.NewString()[:8]+"@example.com"))
		if err != nil || resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %d: %v %v", i, err, resp)
		}
		b, err := bookings.DecodeBooking(resp)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, b.ID)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			resp, err := bookings.Confirm(id)
			if err != nil {
				t.Error(err)
				return
			}
			if resp.StatusCode == http.StatusOK {
				mu.Lock()
				confirmed++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if confirmed != rooms {
		t.Errorf("confirmed = %d, want %d", confirmed, rooms)
	}
}

func TestIdempotentCreate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, catalog, bookings := env.Setup(t)
	defer env.Cleanup(t, mongo)

	seeded := testutil.SeedCatalog(t, catalog, "99.00", 3)
	req := seeded.BookingRequest(0, 2, "retry@example.com")
	key := uuid.NewString()

	var refs []string
	for range 2 {
		resp, err := bookings.CreateWithIdempotencyKey(req, key)
		if err != nil {
			t.Fatal(err)
		}
		b, err := decodeCreated(bookings, resp)
		if err != nil {
			t.Fatal(err)
		}
		refs = append(refs, b.Reference)
	}

	if refs[0] != refs[1] {
		t.Errorf("references = %v, want replay", refs)
	}
	if n := mongo.CountDocuments(t, testutil.BookingsCollection, bson.D{}); n != 1 {
		t.Errorf("bookings = %d, want 1", n)
	}
}

func decodeCreated(c *client.BookingClient, resp *client.Response) (*model.Booking, error) {
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected response: %s", resp.ToString())
	}
	return c.DecodeBooking(resp)
}
