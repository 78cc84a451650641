package catalog

import (
	"github.com/Caspar241/releasehub/internal/domain"
)

// days returns a pointer to a day offset, for use in template literals
func days(n int) *int {
	return &n
}

// weeks returns a pointer to a week count, for use in template literals
func weeks(n int) *int {
	return &n
}

// BuiltinTemplates returns the templates shipped with the service.
// They are the starting catalog; deployments can add or override
// templates from a directory via LoadCatalog.
func BuiltinTemplates() []*Template {
	return []*Template{
		singleRelease8w(),
		epRelease4w(),
		artistWeeklyRoutine(),
	}
}

// singleRelease8w is the standard eight week single release plan.
func singleRelease8w() *Template {
	return &Template{
		ID:            "single-8w",
		Name:          "8-Wochen Single Release Plan",
		Type:          domain.TypeRelease,
		Description:   "Kompletter Fahrplan von der Strategie bis zum Follow-up für einen Single-Release.",
		DurationWeeks: weeks(8),
		Phases: []Phase{
			{
				ID:    "p1",
				Order: 1,
				Title: "Strategie & Vorbereitung",
				Tasks: []TemplateTask{
					{ID: "p1-t1", Title: "Release-Strategie festlegen", Category: domain.CategoryStrategy, OffsetDays: days(-56)},
					{ID: "p1-t2", Title: "Budget und Timeline planen", Category: domain.CategoryAdmin, OffsetDays: days(-56)},
					{ID: "p1-t3", Title: "Master finalisieren", Category: domain.CategoryAudio, OffsetDays: days(-49)},
				},
			},
			{
				ID:    "p2",
				Order: 2,
				Title: "Assets & Distribution",
				Tasks: []TemplateTask{
					{ID: "p2-t1", Title: "Cover-Artwork abnehmen", Category: domain.CategoryVisuals, OffsetDays: days(-42)},
					{ID: "p2-t2", Title: "Presskit aktualisieren", Category: domain.CategoryBranding, OffsetDays: days(-35)},
					{ID: "p2-t3", Title: "Upload zum Distributor", Category: domain.CategoryDistribution, OffsetDays: days(-28)},
				},
			},
			{
				ID:    "p3",
				Order: 3,
				Title: "Pre-Release Marketing",
				Tasks: []TemplateTask{
					{ID: "p3-t1", Title: "Pre-Save-Kampagne starten", Category: domain.CategoryMarketing, OffsetDays: days(-21)},
					{ID: "p3-t2", Title: "Content-Plan für Social Media erstellen", Category: domain.CategoryContent, OffsetDays: days(-18)},
					{ID: "p3-t3", Title: "Playlist-Pitching einreichen", Category: domain.CategoryNetworking, OffsetDays: days(-14)},
					{ID: "p3-t4", Title: "Snippet teasen", Category: domain.CategoryContent, OffsetDays: days(-7)},
				},
			},
			{
				ID:    "p4",
				Order: 4,
				Title: "Release & Follow-up",
				Tasks: []TemplateTask{
					{ID: "p4-t1", Title: "Release-Tag Posts veröffentlichen", Category: domain.CategoryMarketing, OffsetDays: days(0)},
					{ID: "p4-t2", Title: "Supportern und Playlists danken", Category: domain.CategoryNetworking, OffsetDays: days(1)},
					{ID: "p4-t3", Title: "Streaming-Zahlen auswerten", Category: domain.CategoryAnalytics, OffsetDays: days(7)},
					{ID: "p4-t4", Title: "Follow-up Content posten", Category: domain.CategoryContent, OffsetDays: days(14)},
				},
			},
		},
	}
}

// epRelease4w is a condensed plan for EP releases on short notice.
func epRelease4w() *Template {
	return &Template{
		ID:            "ep-4w",
		Name:          "4-Wochen EP Release Plan",
		Type:          domain.TypeRelease,
		Description:   "Kompakter Release-Plan für EPs mit kurzem Vorlauf.",
		DurationWeeks: weeks(4),
		Phases: []Phase{
			{
				ID:    "p1",
				Order: 1,
				Title: "Vorbereitung",
				Tasks: []TemplateTask{
					{ID: "p1-t1", Title: "Tracklist und Reihenfolge festlegen", Category: domain.CategoryStrategy, OffsetDays: days(-28)},
					{ID: "p1-t2", Title: "Artwork und Visuals abnehmen", Category: domain.CategoryVisuals, OffsetDays: days(-24)},
					{ID: "p1-t3", Title: "Upload zum Distributor", Category: domain.CategoryDistribution, OffsetDays: days(-21)},
				},
			},
			{
				ID:    "p2",
				Order: 2,
				Title: "Promo & Release",
				Tasks: []TemplateTask{
					{ID: "p2-t1", Title: "Pre-Save-Kampagne starten", Category: domain.CategoryMarketing, OffsetDays: days(-14)},
					{ID: "p2-t2", Title: "Release-Tag Posts veröffentlichen", Category: domain.CategoryMarketing, OffsetDays: days(0)},
					{ID: "p2-t3", Title: "Erste Woche auswerten", Category: domain.CategoryAnalytics, OffsetDays: days(7)},
				},
			},
		},
	}
}

// artistWeeklyRoutine is the recurring anchor-less routine instantiated
// once per ISO week by the routine scheduler.
func artistWeeklyRoutine() *Template {
	return &Template{
		ID:          "artist-weekly",
		Name:        "Wöchentliche Artist-Routine",
		Type:        domain.TypeArtist,
		Description: "Wiederkehrende Aufgaben, die jede Woche neu anstehen.",
		Phases: []Phase{
			{
				ID:    "p1",
				Order: 1,
				Title: "Wöchentliche Routine",
				Tasks: []TemplateTask{
					{ID: "p1-t1", Title: "3 Social-Media-Posts veröffentlichen", Category: domain.CategoryContent},
					{ID: "p1-t2", Title: "Kommentare und DMs beantworten", Category: domain.CategoryNetworking},
					{ID: "p1-t3", Title: "Streaming-Statistiken prüfen", Category: domain.CategoryAnalytics},
					{ID: "p1-t4", Title: "Neue Demo-Ideen festhalten", Category: domain.CategoryAudio},
				},
			},
		},
	}
}
