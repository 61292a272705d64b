package sqlxrepos

import (
	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/roster"
)

// rosterRepository serves the roster from the section, student, subject and grade tables.
type rosterRepository struct {
	*sectionRepository
	*studentRepository
	*subjectRepository
	*gradeRepository
}

var _ roster.Repository = (*rosterRepository)(nil)

func NewRosterRepository(db core.DBExecutor) *rosterRepository {
	return &rosterRepository{
		sectionRepository: NewSectionRepository(db),
		studentRepository: NewStudentRepository(db),
		subjectRepository: NewSubjectRepository(db),
		gradeRepository:   NewGradeRepository(db),
	}
}
