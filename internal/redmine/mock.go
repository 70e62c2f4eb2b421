package redmine

import (
	"context"
	"fmt"
)

// MockClient permite tests sin un servidor Redmine real. Los campos Err
// tienen prioridad sobre los valores fijos.
type MockClient struct {
	Account       Account
	AccountErr    error
	ProjectsList  []Project
	ProjectsErr   error
	ProjectByID   map[int]Project
	ProjectErr    error
	CreatedIssue  Issue
	IssueErr      error
	ActivityList  []Activity
	ActivitiesErr error
	TimeEntryErr  error

	IssueInputs     []IssueInput
	TimeEntryInputs []TimeEntryInput
}

func (m *MockClient) CurrentUser(_ context.Context) (Account, error) {
	return m.Account, m.AccountErr
}

func (m *MockClient) Projects(_ context.Context) ([]Project, error) {
	return m.ProjectsList, m.ProjectsErr
}

func (m *MockClient) Project(_ context.Context, id int) (Project, error) {
	if m.ProjectErr != nil {
		return Project{}, m.ProjectErr
	}
	p, ok := m.ProjectByID[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (m *MockClient) CreateIssue(_ context.Context, input IssueInput) (Issue, error) {
	m.IssueInputs = append(m.IssueInputs, input)
	return m.CreatedIssue, m.IssueErr
}

func (m *MockClient) Activities(_ context.Context) ([]Activity, error) {
	return m.ActivityList, m.ActivitiesErr
}

func (m *MockClient) CreateTimeEntry(_ context.Context, input TimeEntryInput) (TimeEntry, error) {
	m.TimeEntryInputs = append(m.TimeEntryInputs, input)
	if m.TimeEntryErr != nil {
		return TimeEntry{}, m.TimeEntryErr
	}
	return TimeEntry{ID: len(m.TimeEntryInputs), Hours: input.Hours}, nil
}

func (m *MockClient) IssueURL(issueID int) string {
	return fmt.Sprintf("https://redmine.example/issues/%d", issueID)
}
