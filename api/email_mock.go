package api

import (
	"context"
	"sync"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

type NotifierMock struct {
	lock   sync.Mutex
	emails []entities.Email
	Err    error
}

func (m *NotifierMock) Send(ctx context.Context, email entities.Email) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.emails = append(m.emails, email)
	return nil
}

func (m *NotifierMock) SetError(err error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Err = err
}

func (m *NotifierMock) SentEmails() []entities.Email {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]entities.Email(nil), m.emails...)
}
