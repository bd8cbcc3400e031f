package engagement

import (
	"golang.org/x/text/language"

	"github.com/noor-reader/noor/internal/domain"
)

// Catalog is the immutable badge table. Evaluation and display both read
// from the same definitions, in declaration order.
type Catalog struct {
	defs    []domain.BadgeDef
	byID    map[string]int
	matcher language.Matcher
}

// displayLangs are the locales badge names are translated into.
// The first entry is the fallback.
var displayLangs = []language.Tag{
	language.English,
	language.Arabic,
	language.Indonesian,
}

var displayKeys = []string{"en", "ar", "id"}

// NewCatalog builds a catalog over defs. Duplicate ids panic: the table is
// static and a duplicate is a programming error.
func NewCatalog(defs []domain.BadgeDef) *Catalog {
	c := &Catalog{
		defs:    append([]domain.BadgeDef(nil), defs...),
		byID:    make(map[string]int, len(defs)),
		matcher: language.NewMatcher(displayLangs),
	}
	for i, d := range c.defs {
		if _, dup := c.byID[d.ID]; dup {
			panic("engagement: duplicate badge id " + d.ID)
		}
		c.byID[d.ID] = i
	}
	return c
}

var defaultCatalog = NewCatalog(AllBadges())

// DefaultCatalog returns the process-wide badge catalog.
func DefaultCatalog() *Catalog { return defaultCatalog }

// Evaluate returns the ids of badges not in unlocked whose condition holds
// for s, in catalog order. It has no side effects.
func (c *Catalog) Evaluate(s domain.StatsSnapshot, unlocked map[string]bool) []string {
	var out []string
	for _, d := range c.defs {
		if unlocked[d.ID] {
			continue
		}
		if d.Condition != nil && d.Condition(s) {
			out = append(out, d.ID)
		}
	}
	return out
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id string) (domain.BadgeDef, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.BadgeDef{}, false
	}
	return c.defs[i], true
}

// Len returns the number of badges.
func (c *Catalog) Len() int { return len(c.defs) }

// Definitions returns a copy of the table in declaration order.
func (c *Catalog) Definitions() []domain.BadgeDef {
	return append([]domain.BadgeDef(nil), c.defs...)
}

// Display renders every badge for the best match among langs. langs accepts
// plain tags ("ar") and Accept-Language values ("id-ID,id;q=0.9").
func (c *Catalog) Display(langs ...string) []domain.BadgeDisplay {
	key := c.langKey(langs)
	out := make([]domain.BadgeDisplay, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, display(d, key))
	}
	return out
}

// DisplayIDs renders the given badge ids, skipping unknown ones.
func (c *Catalog) DisplayIDs(ids []string, langs ...string) []domain.BadgeDisplay {
	key := c.langKey(langs)
	out := make([]domain.BadgeDisplay, 0, len(ids))
	for _, id := range ids {
		if d, ok := c.Lookup(id); ok {
			out = append(out, display(d, key))
		}
	}
	return out
}

func (c *Catalog) langKey(langs []string) string {
	if len(langs) == 0 {
		return displayKeys[0]
	}
	_, idx := language.MatchStrings(c.matcher, langs...)
	return displayKeys[idx]
}

func display(d domain.BadgeDef, lang string) domain.BadgeDisplay {
	localized := d.Names[lang]
	if localized == "" {
		localized = d.Name
	}
	return domain.BadgeDisplay{
		ID:            d.ID,
		Name:          d.Name,
		LocalizedName: localized,
		Description:   d.Description,
		Icon:          d.Icon,
		XPReward:      d.XPReward,
		Category:      d.Category,
		Rarity:        d.Rarity,
	}
}

// ─── Badge Definitions ──────────────────────────────────────────────────────
// Every condition reads cumulative counters or LongestStreak only, so a
// condition that held once keeps holding.

func names(ar, id string) map[string]string {
	return map[string]string{"ar": ar, "id": id}
}

// AllBadges returns the full badge table.
func AllBadges() []domain.BadgeDef {
	return []domain.BadgeDef{
		// ── Quran ──────────────────────────────────────────────────────
		{
			ID: "first_ayah", Name: "First Light", Names: names("النور الأول", "Cahaya Pertama"),
			Description: "Read your first ayah.", Icon: "🌙",
			Category: domain.CatQuran, Rarity: domain.RarityCommon, XPReward: 50,
			Condition: func(s domain.StatsSnapshot) bool { return s.AyahsRead >= 1 },
		},
		{
			ID: "ayahs_100", Name: "Steady Reciter", Names: names("القارئ المثابر", "Pembaca Tekun"),
			Description: "Read 100 ayahs.", Icon: "📖",
			Category: domain.CatQuran, Rarity: domain.RarityCommon, XPReward: 100,
			Condition: func(s domain.StatsSnapshot) bool { return s.AyahsRead >= 100 },
		},
		{
			ID: "ayahs_1000", Name: "Devoted Reader", Names: names("القارئ المخلص", "Pembaca Setia"),
			Description: "Read 1,000 ayahs.", Icon: "📚",
			Category: domain.CatQuran, Rarity: domain.RarityRare, XPReward: 500,
			Condition: func(s domain.StatsSnapshot) bool { return s.AyahsRead >= 1000 },
		},
		{
			ID: "surahs_10", Name: "Explorer", Names: names("المستكشف", "Penjelajah"),
			Description: "Start 10 different surahs.", Icon: "🧭",
			Category: domain.CatQuran, Rarity: domain.RarityCommon, XPReward: 150,
			Condition: func(s domain.StatsSnapshot) bool { return s.SurahsStarted >= 10 },
		},
		{
			ID: "first_surah_complete", Name: "First Seal", Names: names("الختم الأول", "Surah Pertama Tuntas"),
			Description: "Finish a surah to its last ayah.", Icon: "✅",
			Category: domain.CatQuran, Rarity: domain.RarityCommon, XPReward: 100,
			Condition: func(s domain.StatsSnapshot) bool { return s.SurahsCompleted >= 1 },
		},
		{
			ID: "surahs_completed_30", Name: "Thirty Seals", Names: names("ثلاثون ختمًا", "Tiga Puluh Surah"),
			Description: "Finish 30 surahs.", Icon: "🏅",
			Category: domain.CatQuran, Rarity: domain.RarityEpic, XPReward: 1000,
			Condition: func(s domain.StatsSnapshot) bool { return s.SurahsCompleted >= 30 },
		},
		{
			ID: "pages_100", Name: "Hundred Pages", Names: names("مئة صفحة", "Seratus Halaman"),
			Description: "Read 100 mushaf pages.", Icon: "📄",
			Category: domain.CatQuran, Rarity: domain.RarityRare, XPReward: 300,
			Condition: func(s domain.StatsSnapshot) bool { return s.PagesRead >= 100 },
		},
		{
			ID: "khatam", Name: "Khatam", Names: names("الختمة", "Khatam"),
			Description: "Finish all 114 surahs.", Icon: "🕋",
			Category: domain.CatQuran, Rarity: domain.RarityLegendary, XPReward: 5000,
			Condition: func(s domain.StatsSnapshot) bool { return s.SurahsCompleted >= 114 },
		},

		// ── Hadith ─────────────────────────────────────────────────────
		{
			ID: "first_hadith", Name: "Seeker", Names: names("طالب العلم", "Pencari Ilmu"),
			Description: "Read your first hadith.", Icon: "📜",
			Category: domain.CatHadith, Rarity: domain.RarityCommon, XPReward: 50,
			Condition: func(s domain.StatsSnapshot) bool { return s.HadithsRead >= 1 },
		},
		{
			ID: "hadiths_40", Name: "Forty Traditions", Names: names("الأربعون", "Empat Puluh Hadits"),
			Description: "Read 40 different hadiths.", Icon: "🪶",
			Category: domain.CatHadith, Rarity: domain.RarityCommon, XPReward: 200,
			Condition: func(s domain.StatsSnapshot) bool { return s.HadithsRead >= 40 },
		},
		{
			ID: "nawawi_complete", Name: "Nawawi's Forty", Names: names("الأربعون النووية", "Arbain Nawawi"),
			Description: "Read every hadith of al-Nawawi's collection.", Icon: "🌿",
			Category: domain.CatHadith, Rarity: domain.RarityRare, XPReward: 400,
			Condition: func(s domain.StatsSnapshot) bool { return s.Collection("nawawi40") >= 42 },
		},
		{
			ID: "hadiths_100", Name: "Narrator", Names: names("الراوي", "Perawi"),
			Description: "Read 100 different hadiths.", Icon: "🗞️",
			Category: domain.CatHadith, Rarity: domain.RarityRare, XPReward: 400,
			Condition: func(s domain.StatsSnapshot) bool { return s.HadithsRead >= 100 },
		},
		{
			ID: "bukhari_100", Name: "Student of Bukhari", Names: names("تلميذ البخاري", "Murid Bukhari"),
			Description: "Read 100 hadiths from Sahih al-Bukhari.", Icon: "🏛️",
			Category: domain.CatHadith, Rarity: domain.RarityEpic, XPReward: 800,
			Condition: func(s domain.StatsSnapshot) bool { return s.Collection("bukhari") >= 100 },
		},

		// ── Dua & Dhikr ────────────────────────────────────────────────
		{
			ID: "first_dua", Name: "First Supplication", Names: names("الدعاء الأول", "Doa Pertama"),
			Description: "Learn your first dua.", Icon: "🤲",
			Category: domain.CatDua, Rarity: domain.RarityCommon, XPReward: 50,
			Condition: func(s domain.StatsSnapshot) bool { return s.DuasLearned >= 1 },
		},
		{
			ID: "duas_10", Name: "Supplicant", Names: names("الداعي", "Ahli Doa"),
			Description: "Learn 10 duas.", Icon: "💫",
			Category: domain.CatDua, Rarity: domain.RarityCommon, XPReward: 150,
			Condition: func(s domain.StatsSnapshot) bool { return s.DuasLearned >= 10 },
		},
		{
			ID: "duas_50", Name: "Heart of Dua", Names: names("قلب الدعاء", "Hati yang Berdoa"),
			Description: "Learn 50 duas.", Icon: "💖",
			Category: domain.CatDua, Rarity: domain.RarityRare, XPReward: 500,
			Condition: func(s domain.StatsSnapshot) bool { return s.DuasLearned >= 50 },
		},
		{
			ID: "morning_dhikr_7", Name: "Early Riser", Names: names("المبكر", "Bangun Pagi"),
			Description: "Complete the morning adhkar on 7 days.", Icon: "🌅",
			Category: domain.CatDua, Rarity: domain.RarityCommon, XPReward: 150,
			Condition: func(s domain.StatsSnapshot) bool { return s.MorningDhikr >= 7 },
		},
		{
			ID: "morning_dhikr_40", Name: "Dawn Keeper", Names: names("حارس الفجر", "Penjaga Fajar"),
			Description: "Complete the morning adhkar on 40 days.", Icon: "☀️",
			Category: domain.CatDua, Rarity: domain.RarityEpic, XPReward: 800,
			Condition: func(s domain.StatsSnapshot) bool { return s.MorningDhikr >= 40 },
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_3", Name: "Three in a Row", Names: names("ثلاثة أيام متتالية", "Tiga Hari Berturut"),
			Description: "Be active 3 days in a row.", Icon: "✨",
			Category: domain.CatStreaks, Rarity: domain.RarityCommon, XPReward: 75,
			Condition: func(s domain.StatsSnapshot) bool { return s.LongestStreak >= 3 },
		},
		{
			ID: "streak_7", Name: "Week of Light", Names: names("أسبوع النور", "Sepekan Bercahaya"),
			Description: "Be active 7 days in a row.", Icon: "🔥",
			Category: domain.CatStreaks, Rarity: domain.RarityRare, XPReward: 200,
			Condition: func(s domain.StatsSnapshot) bool { return s.LongestStreak >= 7 },
		},
		{
			ID: "streak_30", Name: "Month of Devotion", Names: names("شهر العبادة", "Sebulan Istiqamah"),
			Description: "Be active 30 days in a row.", Icon: "🌕",
			Category: domain.CatStreaks, Rarity: domain.RarityEpic, XPReward: 1000,
			Condition: func(s domain.StatsSnapshot) bool { return s.LongestStreak >= 30 },
		},
		{
			ID: "streak_100", Name: "Istiqamah", Names: names("الاستقامة", "Istiqamah"),
			Description: "Be active 100 days in a row.", Icon: "⭐",
			Category: domain.CatStreaks, Rarity: domain.RarityLegendary, XPReward: 3000,
			Condition: func(s domain.StatsSnapshot) bool { return s.LongestStreak >= 100 },
		},

		// ── Mastery ────────────────────────────────────────────────────
		{
			ID: "scholar", Name: "Scholar", Names: names("العالم", "Alim"),
			Description: "Finish 20 surahs, read 100 hadiths and learn 50 duas.", Icon: "🎓",
			Category: domain.CatMastery, Rarity: domain.RarityLegendary, XPReward: 2500,
			Condition: func(s domain.StatsSnapshot) bool {
				return s.SurahsCompleted >= 20 && s.HadithsRead >= 100 && s.DuasLearned >= 50
			},
		},
	}
}
