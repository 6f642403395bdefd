package matching

import (
	"testing"
	"time"

	"github.com/skillbarter/backend/internal/users"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	e := NewEngine(DefaultWeights())
	e.now = func() time.Time { return testNow }
	return e
}

func testUser(id int64, opts ...func(*users.User)) *users.User {
	u := &users.User{
		ID:           id,
		Name:         "Test User",
		City:         "Austin",
		State:        "TX",
		LastActiveAt: testNow,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func offers(skills ...users.OfferedSkill) func(*users.User) {
	return func(u *users.User) { u.SkillsOffered = skills }
}

func wants(skills ...users.WantedSkill) func(*users.User) {
	return func(u *users.User) { u.SkillsWanted = skills }
}

func rated(avg float64) func(*users.User) {
	return func(u *users.User) { u.RatingAverage = avg }
}

func lastActive(t time.Time) func(*users.User) {
	return func(u *users.User) { u.LastActiveAt = t }
}

func inCity(city, state string) func(*users.User) {
	return func(u *users.User) {
		u.City = city
		u.State = state
	}
}

func TestCalculateMatchScore_PerfectExchange(t *testing.T) {
	engine := newTestEngine()

	a := testUser(1,
		offers(users.OfferedSkill{Name: "JavaScript", Proficiency: "Advanced"}),
		wants(users.WantedSkill{Name: "Yoga", Priority: "High"}),
		rated(4.0),
	)
	b := testUser(2,
		offers(users.OfferedSkill{Name: "Yoga", Proficiency: "Intermediate"}),
		wants(users.WantedSkill{Name: "JavaScript", Priority: "Medium"}),
		rated(4.0),
	)

	// skill 1.0, location 1.0, proficiency 0.8, rating 0.8, availability 1.0
	// 0.4 + 0.2 + 0.16 + 0.08 + 0.1 = 0.94
	if got := engine.CalculateMatchScore(a, b); got != 94 {
		t.Errorf("CalculateMatchScore = %d, want 94", got)
	}
}

func TestCalculateMatchScore_Symmetric(t *testing.T) {
	engine := newTestEngine()

	a := testUser(1,
		offers(
			users.OfferedSkill{Name: "Guitar", Proficiency: "Expert"},
			users.OfferedSkill{Name: "Spanish", Proficiency: "Advanced"},
		),
		wants(users.WantedSkill{Name: "Photography", Priority: "Low"}),
		rated(3.5),
		inCity("Denver", "CO"),
		lastActive(testNow.Add(-48*time.Hour)),
	)
	b := testUser(2,
		offers(users.OfferedSkill{Name: "Photography", Proficiency: "Intermediate"}),
		wants(
			users.WantedSkill{Name: "Guitar", Priority: "High"},
			users.WantedSkill{Name: "Cooking", Priority: "Medium"},
		),
		rated(4.8),
		inCity("Boulder", "CO"),
		lastActive(testNow.Add(-5*24*time.Hour)),
	)

	ab := engine.CalculateMatchScore(a, b)
	ba := engine.CalculateMatchScore(b, a)
	if ab != ba {
		t.Errorf("score not symmetric: a,b=%d b,a=%d", ab, ba)
	}
}

func TestCalculateMatchScore_Bounds(t *testing.T) {
	engine := newTestEngine()

	cases := []struct {
		name string
		a, b *users.User
	}{
		{
			name: "empty profiles",
			a:    testUser(1, inCity("", ""), lastActive(testNow.Add(-365*24*time.Hour))),
			b:    testUser(2, inCity("", ""), lastActive(testNow.Add(-365*24*time.Hour))),
		},
		{
			name: "maximal profiles",
			a: testUser(1,
				offers(users.OfferedSkill{Name: "Chess", Proficiency: "Expert"}),
				wants(users.WantedSkill{Name: "Piano", Priority: "High"}),
				rated(5.0),
			),
			b: testUser(2,
				offers(users.OfferedSkill{Name: "Piano", Proficiency: "Expert"}),
				wants(users.WantedSkill{Name: "Chess", Priority: "High"}),
				rated(5.0),
			),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := engine.CalculateMatchScore(tc.a, tc.b)
			if got < 0 || got > 100 {
				t.Errorf("score %d out of [0, 100]", got)
			}
		})
	}
}

func TestSkillMatchScore(t *testing.T) {
	cases := []struct {
		name string
		a, b *users.User
		want float64
	}{
		{
			name: "no skills on either side",
			a:    testUser(1),
			b:    testUser(2),
			want: 0,
		},
		{
			name: "one side empty",
			a:    testUser(1, offers(users.OfferedSkill{Name: "Guitar"})),
			b:    testUser(2),
			want: 0,
		},
		{
			name: "full bidirectional overlap",
			a: testUser(1,
				offers(users.OfferedSkill{Name: "Guitar"}),
				wants(users.WantedSkill{Name: "Piano"}),
			),
			b: testUser(2,
				offers(users.OfferedSkill{Name: "Piano"}),
				wants(users.WantedSkill{Name: "Guitar"}),
			),
			want: 1.0,
		},
		{
			name: "case-insensitive names",
			a: testUser(1,
				offers(users.OfferedSkill{Name: "guitar"}),
				wants(users.WantedSkill{Name: "PIANO"}),
			),
			b: testUser(2,
				offers(users.OfferedSkill{Name: "Piano"}),
				wants(users.WantedSkill{Name: "Guitar"}),
			),
			want: 1.0,
		},
		{
			name: "partial overlap",
			a: testUser(1,
				offers(
					users.OfferedSkill{Name: "Guitar"},
					users.OfferedSkill{Name: "Spanish"},
				),
				wants(users.WantedSkill{Name: "Piano"}),
			),
			b: testUser(2,
				offers(users.OfferedSkill{Name: "Drums"}),
				wants(
					users.WantedSkill{Name: "Guitar"},
					users.WantedSkill{Name: "French"},
				),
			),
			// one match (Guitar) over min(2,2)+min(1,1) = 3
			want: 1.0 / 3.0,
		},
		{
			name: "duplicate names pass through the ratio",
			a: testUser(1,
				offers(
					users.OfferedSkill{Name: "Guitar"},
					users.OfferedSkill{Name: "guitar"},
				),
			),
			b: testUser(2, wants(users.WantedSkill{Name: "Guitar"})),
			// both duplicates match over min(2,1)+min(0,0) = 1
			want: 2.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := skillMatchScore(tc.a, tc.b); got != tc.want {
				t.Errorf("skillMatchScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLocationScore(t *testing.T) {
	cases := []struct {
		name string
		a, b *users.User
		want float64
	}{
		{"same city", testUser(1, inCity("Austin", "TX")), testUser(2, inCity("Austin", "TX")), 1.0},
		{"same state different city", testUser(1, inCity("Austin", "TX")), testUser(2, inCity("Dallas", "TX")), 0.7},
		{"different state", testUser(1, inCity("Austin", "TX")), testUser(2, inCity("Denver", "CO")), 0.3},
		{"city comparison is case-sensitive", testUser(1, inCity("austin", "TX")), testUser(2, inCity("Austin", "TX")), 0.7},
		{"missing city scores neutral", testUser(1, inCity("", "TX")), testUser(2, inCity("Austin", "TX")), 0.5},
		{"both cities missing", testUser(1, inCity("", "")), testUser(2, inCity("", "")), 0.5},
		{"missing state falls through", testUser(1, inCity("Austin", "")), testUser(2, inCity("Dallas", "")), 0.3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := locationScore(tc.a, tc.b); got != tc.want {
				t.Errorf("locationScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRatingScore(t *testing.T) {
	a := testUser(1, rated(4.0))
	b := testUser(2, rated(3.0))
	if got := ratingScore(a, b); got != 0.7 {
		t.Errorf("ratingScore = %v, want 0.7", got)
	}

	unrated := testUser(3)
	if got := ratingScore(unrated, unrated); got != 0 {
		t.Errorf("ratingScore for unrated users = %v, want 0", got)
	}
}

func TestAvailabilityScore(t *testing.T) {
	engine := newTestEngine()

	cases := []struct {
		name string
		a, b time.Time
		want float64
	}{
		{"both active today", testNow, testNow, 1.0},
		{"average two days", testNow.Add(-1 * 24 * time.Hour), testNow.Add(-3 * 24 * time.Hour), 0.8},
		{"average five days", testNow.Add(-4 * 24 * time.Hour), testNow.Add(-6 * 24 * time.Hour), 0.5},
		{"both stale", testNow.Add(-30 * 24 * time.Hour), testNow.Add(-10 * 24 * time.Hour), 0.2},
		{"one fresh one stale averages out", testNow, testNow.Add(-6 * 24 * time.Hour), 0.8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := testUser(1, lastActive(tc.a))
			b := testUser(2, lastActive(tc.b))
			if got := engine.availabilityScore(a, b); got != tc.want {
				t.Errorf("availabilityScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFindBestExchange_OrdersByPriority(t *testing.T) {
	engine := newTestEngine()

	a := testUser(1,
		offers(users.OfferedSkill{Name: "JavaScript", Proficiency: "Advanced"}),
		wants(users.WantedSkill{Name: "Yoga", Priority: "High"}),
	)
	b := testUser(2,
		offers(users.OfferedSkill{Name: "Yoga", Proficiency: "Intermediate"}),
		wants(users.WantedSkill{Name: "JavaScript", Priority: "Medium"}),
	)

	exchanges := engine.FindBestExchange(a, b)
	if len(exchanges) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(exchanges))
	}

	first := exchanges[0]
	if first.TeacherID != 2 || first.LearnerID != 1 || first.SkillName != "Yoga" ||
		first.Proficiency != "Intermediate" || first.Priority != "High" {
		t.Errorf("unexpected first exchange: %+v", first)
	}

	second := exchanges[1]
	if second.TeacherID != 1 || second.LearnerID != 2 || second.SkillName != "JavaScript" ||
		second.Proficiency != "Advanced" || second.Priority != "Medium" {
		t.Errorf("unexpected second exchange: %+v", second)
	}
}

func TestFindBestExchange_CapsAtTwo(t *testing.T) {
	engine := newTestEngine()

	a := testUser(1,
		offers(
			users.OfferedSkill{Name: "Guitar", Proficiency: "Expert"},
			users.OfferedSkill{Name: "Spanish", Proficiency: "Advanced"},
			users.OfferedSkill{Name: "Chess", Proficiency: "Intermediate"},
		),
		wants(users.WantedSkill{Name: "Piano", Priority: "Low"}),
	)
	b := testUser(2,
		offers(users.OfferedSkill{Name: "Piano", Proficiency: "Advanced"}),
		wants(
			users.WantedSkill{Name: "Guitar", Priority: "High"},
			users.WantedSkill{Name: "Spanish", Priority: "Medium"},
			users.WantedSkill{Name: "Chess", Priority: "Low"},
		),
	)

	exchanges := engine.FindBestExchange(a, b)
	if len(exchanges) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(exchanges))
	}
	if exchanges[0].SkillName != "Guitar" || exchanges[1].SkillName != "Spanish" {
		t.Errorf("expected Guitar then Spanish, got %s then %s",
			exchanges[0].SkillName, exchanges[1].SkillName)
	}
}

func TestFindBestExchange_StableOnPriorityTies(t *testing.T) {
	engine := newTestEngine()

	// Both directions carry High priority. Generation order (a teaches
	// first) must survive the sort.
	a := testUser(1,
		offers(users.OfferedSkill{Name: "Guitar", Proficiency: "Expert"}),
		wants(users.WantedSkill{Name: "Piano", Priority: "High"}),
	)
	b := testUser(2,
		offers(users.OfferedSkill{Name: "Piano", Proficiency: "Advanced"}),
		wants(users.WantedSkill{Name: "Guitar", Priority: "High"}),
	)

	exchanges := engine.FindBestExchange(a, b)
	if len(exchanges) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(exchanges))
	}
	if exchanges[0].TeacherID != 1 {
		t.Errorf("tie should keep a-teaches direction first, got teacher %d", exchanges[0].TeacherID)
	}
}

func TestFindBestExchange_NoOverlap(t *testing.T) {
	engine := newTestEngine()

	a := testUser(1, offers(users.OfferedSkill{Name: "Guitar", Proficiency: "Expert"}))
	b := testUser(2, offers(users.OfferedSkill{Name: "Piano", Proficiency: "Advanced"}))

	if exchanges := engine.FindBestExchange(a, b); len(exchanges) != 0 {
		t.Errorf("got %d exchanges, want 0", len(exchanges))
	}
}

func TestCalculateMatchScore_Deterministic(t *testing.T) {
	engine := newTestEngine()

	a := testUser(1,
		offers(users.OfferedSkill{Name: "Guitar", Proficiency: "Expert"}),
		wants(users.WantedSkill{Name: "Piano", Priority: "High"}),
		rated(3.7),
	)
	b := testUser(2,
		offers(users.OfferedSkill{Name: "Piano", Proficiency: "Advanced"}),
		wants(users.WantedSkill{Name: "Guitar", Priority: "Medium"}),
		rated(4.2),
	)

	first := engine.CalculateMatchScore(a, b)
	for i := 0; i < 10; i++ {
		if got := engine.CalculateMatchScore(a, b); got != first {
			t.Fatalf("score changed between runs: %d vs %d", first, got)
		}
	}
}
