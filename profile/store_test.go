package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"campus_shelf/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memKV) Get(_ context.Context, k string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[k]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, k, v string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = v
	return nil
}

func (m *memKV) Del(_ context.Context, k string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, k)
	return nil
}

var errNotFound = errors.New("not found")

// memSource 不加锁地读改写，由 Store.Update 负责串行化
type memSource struct {
	users map[string]models.User
	reads int
}

func (m *memSource) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.reads++
	u, ok := m.users[id]
	if !ok {
		return nil, errNotFound
	}
	return &u, nil
}

func (m *memSource) UpdateUser(_ context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errNotFound
	}
	// 放大读改写窗口
	time.Sleep(time.Microsecond)
	if err := fn(&u); err != nil {
		return nil, err
	}
	m.users[id] = u
	return &u, nil
}

func sampleUser() models.User {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return models.User{
		ID: "u1", Name: "Ada", Email: "ada@mit.edu", College: "MIT", Branch: "Mathematics",
		Year: "1st Year", Role: models.RoleStudent, DonationScore: 3, CampusCoins: 7,
		PhoneNumber: "555-0101", AltPhoneNumber: "555-0102", LastLoginAt: &ts, LoginCount: 4,
		CreatedAt: ts, UpdatedAt: ts,
	}
}

func newFixture() (*Store, *memKV, *memSource) {
	kv := &memKV{data: map[string]string{}}
	src := &memSource{users: map[string]models.User{"u1": sampleUser()}}
	return NewStore(kv, src, nil), kv, src
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	u := sampleUser()
	raw, err := Encode(u)
	require.NoError(t, err)
	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("{not json")
	assert.Error(t, err)
	_, err = Decode(`{"name":"no id"}`)
	assert.Error(t, err)
}

func TestCurrent_ReadsThroughAndPersists(t *testing.T) {
	st, kv, src := newFixture()
	ctx := context.Background()

	u, err := st.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, sampleUser(), *u)
	assert.Contains(t, kv.data, "shelf:profile:u1")

	_, err = st.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, src.reads, "second read served from persisted copy")
}

func TestCurrent_MalformedFallsBack(t *testing.T) {
	st, kv, src := newFixture()
	kv.data["shelf:profile:u1"] = "garbage"

	u, err := st.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, 1, src.reads)

	fixed, err := Decode(kv.data["shelf:profile:u1"])
	require.NoError(t, err)
	assert.Equal(t, "u1", fixed.ID)
}

func TestCurrent_Unknown(t *testing.T) {
	st, _, _ := newFixture()
	_, err := st.Current(context.Background(), "ghost")
	assert.ErrorIs(t, err, errNotFound)
}

func TestUpdate_SerializesCounters(t *testing.T) {
	st, kv, src := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Update(ctx, "u1", func(u *models.User) error {
				u.CampusCoins++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 57, src.users["u1"].CampusCoins)
	persisted, err := Decode(kv.data["shelf:profile:u1"])
	require.NoError(t, err)
	assert.Equal(t, 57, persisted.CampusCoins)
}

func TestUpdate_RefusesNegative(t *testing.T) {
	st, _, src := newFixture()
	_, err := st.Update(context.Background(), "u1", func(u *models.User) error {
		u.CampusCoins -= 8
		return nil
	})
	assert.ErrorIs(t, err, ErrNegativeCounter)
	assert.Equal(t, 7, src.users["u1"].CampusCoins)
}

func TestRefresh_RereadsSourceOverStaleCopy(t *testing.T) {
	st, kv, src := newFixture()
	ctx := context.Background()

	stale := sampleUser()
	stale.CampusCoins = 2
	require.NoError(t, st.Replace(ctx, stale))

	u := src.users["u1"]
	u.CampusCoins = 4
	src.users["u1"] = u

	got, err := st.Refresh(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.CampusCoins)

	persisted, err := Decode(kv.data["shelf:profile:u1"])
	require.NoError(t, err)
	assert.Equal(t, 4, persisted.CampusCoins)

	_, err = st.Refresh(ctx, "ghost")
	assert.ErrorIs(t, err, errNotFound)
}

func TestForget(t *testing.T) {
	st, kv, _ := newFixture()
	ctx := context.Background()
	_, err := st.Current(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, st.Forget(ctx, "u1"))
	assert.NotContains(t, kv.data, "shelf:profile:u1")
}

func TestFromLogin(t *testing.T) {
	u := FromLogin(Default(), " Priya.S@MIT.edu ", "Stanford")
	assert.Equal(t, "priya.s@mit.edu", u.Email)
	assert.Equal(t, "Priya.s", u.Name)
	assert.Equal(t, "Stanford", u.College)
	assert.Equal(t, "Computer Science", u.Branch)
	assert.Zero(t, u.CampusCoins)

	keep := FromLogin(Default(), "x@y.z", "")
	assert.Equal(t, "MIT", keep.College)
	assert.Equal(t, "X", keep.Name)
}

func TestFromLogin_MultibyteLocalPart(t *testing.T) {
	for email, want := range map[string]string{
		"émile@mit.edu":   "Émile",
		"ñandu@mit.edu":   "Ñandu",
		"李雷@pku.edu.cn":   "李雷",
		"@mit.edu":        Default().Name,
		"\xff\xfeab@x.io": Default().Name,
	} {
		u := FromLogin(Default(), email, "")
		assert.Equal(t, want, u.Name, email)
		assert.True(t, utf8.ValidString(u.Name), email)
	}
}
