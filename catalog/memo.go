package catalog

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"slices"
	"sync"

	"campus_shelf/models"
)

// Memo caches the last FilterSort result, keyed on a fingerprint of the whole
// input tuple. A search-box keystroke that does not change the tuple is a hit.
type Memo struct {
	mu     sync.Mutex
	key    uint64
	valid  bool
	result []models.Book

	hits, misses int
}

func (m *Memo) FilterSort(books []models.Book, f Filter) []models.Book {
	k := fingerprint(books, f)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.key == k {
		m.hits++
		return slices.Clone(m.result)
	}
	m.misses++
	m.result = FilterSort(books, f)
	m.key, m.valid = k, true
	return slices.Clone(m.result)
}

// Stats 命中/未命中次数
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

func fingerprint(books []models.Book, f Filter) uint64 {
	h := fnv.New64a()
	str := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	flag := func(v bool) {
		if v {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(f.Segment))
	_, _ = h.Write(n[:])
	flag(f.FilterCollege)
	str(f.UserCollege)
	str(f.Query)

	ids := slices.Clone(f.AcceptedBookIDs)
	slices.Sort(ids)
	for _, id := range ids {
		str(id)
	}
	str("|")
	// 结果里带着整本书，展示字段变了也要失效
	num := func(v uint64) {
		binary.LittleEndian.PutUint64(n[:], v)
		_, _ = h.Write(n[:])
	}
	for _, b := range books {
		str(b.ID)
		str(b.Title)
		str(b.Author)
		str(b.College)
		str(string(b.Condition))
		str(b.DonorID)
		str(b.Location)
		str(b.ContactNumber)
		flag(b.IsUrgent)
		flag(b.IsInstitutionDonated)
		num(math.Float64bits(b.MarketPrice))
		num(math.Float64bits(b.CurrentPrice))
	}
	return h.Sum64()
}
