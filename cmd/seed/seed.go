package main

import (
	"context"
	"fmt"
	"log"

	"github.com/sccsite/internal/content"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/service"
)

func intPtr(v int) *int { return &v }

// seedContent 为空表写入示例内容，已有数据的表会被跳过
func seedContent(ctx context.Context, s *service.Services) (map[string]int, error) {
	created := map[string]int{}
	steps := []struct {
		name string
		run  func() (int, error)
	}{
		{"team", func() (int, error) { return seedSection(ctx, "team", s.Team, sampleTeam()) }},
		{"events", func() (int, error) { return seedSection(ctx, "events", s.Events, sampleEvents()) }},
		{"projects", func() (int, error) { return seedSection(ctx, "projects", s.Projects, sampleProjects()) }},
		{"gallery", func() (int, error) { return seedSection(ctx, "gallery", s.Gallery, sampleGallery()) }},
		{"announcements", func() (int, error) { return seedSection(ctx, "announcements", s.Announcements, sampleAnnouncements()) }},
		{"about", func() (int, error) { return seedSection(ctx, "about", s.About, sampleAbout()) }},
	}
	for _, step := range steps {
		n, err := step.run()
		created[step.name] = n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// seedSection 通过表单控制器保存示例数据，与后台录入走同一套校验
func seedSection[T any, PT interface {
	*T
	content.Entity
}](ctx context.Context, name string, section *service.Section[T, PT], items []T) (int, error) {
	count, err := section.Store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	if count > 0 {
		log.Printf("[seed] %s 已存在 %d 条记录，跳过创建", name, count)
		return 0, nil
	}

	created := 0
	for i := range items {
		if _, err := section.Controller.Save(ctx, &items[i], nil); err != nil {
			return created, fmt.Errorf("seed %s: %w", name, err)
		}
		created++
	}
	return created, nil
}

func sampleTeam() []db.TeamMember {
	return []db.TeamMember{
		{Name: "Amira Hassan", Role: "Chair", Department: "Executive", Email: "chair@example.com",
			Description: "Leads the committee and liaises with faculty."},
		{Name: "Jonas Becker", Role: "Treasurer", Department: "Finance", Email: "treasurer@example.com"},
		{Name: "Mei Chen", Role: "Events Lead", Department: "Events", Email: "events@example.com",
			LinkedIn: "https://www.linkedin.com/in/example"},
		{Name: "Ravi Patel", Role: "Tech Lead", Department: "Tech", Email: "tech@example.com"},
	}
}

func sampleEvents() []db.Event {
	return []db.Event{
		{
			Title: "Welcome Panel", Date: "2025-09-12", Location: "Student Union Hall",
			Description: "Meet the committee and **other students** over snacks.",
			Category:    "Panel",
			EventExtra:  db.EventExtra{Attendees: intPtr(120), Outcome: "Record first-week turnout."},
		},
		{
			Title: "Industry Talk: Building for Scale", Date: "2025-10-03", Location: "Lecture Theatre 2",
			Description: "An engineer walks through lessons from running large systems.",
			Category:    "Talk",
			EventExtra:  db.EventExtra{Guests: []string{"Dr. Sam Okafor"}},
		},
		{
			Title: "Autumn Hackathon", Date: "2025-11-15", Location: "Innovation Lab",
			Description: "24 hours, teams of four, one theme announced at kickoff.",
			Category:    "Hackathon", IsLive: true,
		},
	}
}

func sampleProjects() []db.Project {
	return []db.Project{
		{Title: "Timetable Planner", Description: "Builds clash-free timetables from module choices.",
			Technologies: []string{"Go", "PostgreSQL"}, GithubURL: "https://github.com/example/timetable"},
		{Title: "Study Room Finder", Description: "Shows free study rooms across campus in real time.",
			Technologies: service.ParseTechnologies("TypeScript, React, Redis")},
	}
}

func sampleGallery() []db.GalleryImage {
	return []db.GalleryImage{
		{Title: "Freshers Fair", Category: "Events", Width: 1600, Height: 1067,
			ImageURL: "https://images.unsplash.com/photo-1523580494863-6f3031224c94?auto=format&fit=crop&w=1600&q=80"},
		{Title: "Committee Retreat", Category: "Team", Width: 1600, Height: 1067,
			ImageURL: "https://images.unsplash.com/photo-1522071820081-009f0129c71c?auto=format&fit=crop&w=1600&q=80"},
		{Title: "Hackathon Night", Category: "Workshops", Width: 1100, Height: 1700,
			ImageURL: "https://images.unsplash.com/photo-1504384308090-c894fdcc538d?auto=format&fit=crop&w=1100&q=80"},
	}
}

func sampleAnnouncements() []db.Announcement {
	return []db.Announcement{
		{Title: "Summer internship applications open", Category: "Opportunity",
			Content: "Several partner companies are taking applications until **30 April**."},
		{Title: "AGM next month", Category: "News",
			Content: "All members are invited. Nominations for the new committee close a week before."},
	}
}

func sampleAbout() []db.AboutItem {
	return []db.AboutItem{
		{Title: "Who we are", Type: db.AboutTypeSection,
			Description: "We are the elected student committee representing every year group."},
		{Title: "Our mission", Type: db.AboutTypeSection,
			Description: "Connect students with industry, run events and support student projects."},
		{Title: "Weekly drop-in sessions", Type: db.AboutTypeItem,
			Description: "Every Wednesday at 13:00 in the common room."},
	}
}
