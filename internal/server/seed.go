// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/jaswdr/faker"

	"github.com/jeranaias/eduportal-tui/internal/model"
)

var (
	seedDepartments    = []string{"Computer Science", "Mathematics", "Physics", "Commerce", "English"}
	seedQualifications = []string{"M.Sc", "M.Tech", "Ph.D", "MBA", "M.A"}
	seedSections       = []string{"A", "B", "C"}
	seedSubjects       = []string{"Algorithms", "Calculus", "Mechanics", "Accounting", "Literature", "Databases"}
	seedClubs          = []string{"Coding Club", "Drama Society", "Robotics Club", "Debate Forum"}
)

// Seed fills the portal with n generated academics, 2n students, n events
// and a weekly timetable. The same seed yields the same names.
func (p *Portal) Seed(n int, seed int64) {
	f := faker.NewWithSeed(rand.NewSource(seed))

	p.mu.Lock()
	defer p.mu.Unlock()

	var faculty []string
	for i := 0; i < n; i++ {
		name := f.Person().Name()
		a, status, _ := p.addAcademic(AdminUsername, AcademicInput{
			Name:          name,
			Department:    seedDepartments[i%len(seedDepartments)],
			Qualification: seedQualifications[f.IntBetween(0, len(seedQualifications)-1)],
			Experience:    strconv.Itoa(f.IntBetween(1, 30)),
			Email:         strings.ToLower(strings.ReplaceAll(name, " ", ".")) + fmt.Sprintf("%d@eduportal.edu", i),
			Phone:         f.Numerify("##########"),
		})
		if status == 201 {
			faculty = append(faculty, a.Name)
		}
	}

	for i := 0; i < 2*n; i++ {
		s, _ := p.addStudent(AdminUsername, f.Person().Name(), seedSections[i%len(seedSections)])
		if acc, found := p.accounts[s.LoginID]; found {
			acc.Profile.Email = strings.ToLower(s.LoginID) + "@students.eduportal.edu"
		}
	}

	start := p.now().AddDate(0, 0, 7)
	for i := 0; i < n; i++ {
		_, _ = p.addEvent(AdminUsername, EventInput{
			Title:         f.Lorem().Sentence(3),
			Date:          start.AddDate(0, 0, i*3).Format("2006-01-02"),
			Time:          fmt.Sprintf("%02d:00", 9+i%8),
			OrganizerName: f.Person().Name(),
			ClubName:      seedClubs[i%len(seedClubs)],
			Capacity:      strconv.Itoa(f.IntBetween(20, 200)),
			Venue:         "Hall " + strconv.Itoa(1+i%4),
			Description:   f.Lorem().Sentence(12),
		})
	}

	if len(faculty) == 0 {
		return
	}
	for d, day := range model.Days {
		for slot := 0; slot < 3; slot++ {
			startHour := 9 + slot*2
			_, _, _ = p.addTimetable(AdminUsername, TimetableInput{
				Day:         day,
				StartTime:   fmt.Sprintf("%02d:00", startHour),
				EndTime:     fmt.Sprintf("%02d:00", startHour+1),
				ClassName:   "BSc " + seedSections[(d+slot)%len(seedSections)],
				FacultyName: faculty[(d+slot)%len(faculty)],
				Subject:     seedSubjects[(d*3+slot)%len(seedSubjects)],
				Section:     seedSections[(d+slot)%len(seedSections)],
				Classroom:   "R" + strconv.Itoa(100+slot),
				Building:    "Main",
			})
		}
	}
}
