// internal/mailbox/imap.go
package mailbox

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/draftloop/outreach-backend/internal/config"
)

// IMAPMailbox dials the configured IMAP server over TLS and exposes the
// INBOX as a Session.
type IMAPMailbox struct {
	cfg config.IMAPConfig
}

func NewIMAPMailbox(cfg config.IMAPConfig) *IMAPMailbox {
	return &IMAPMailbox{cfg: cfg}
}

func (m *IMAPMailbox) Dial(ctx context.Context) (Session, error) {
	client, err := imapclient.DialTLS(m.cfg.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", m.cfg.Addr, err)
	}
	if err := client.Login(m.cfg.Username, m.cfg.Password).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("imap select inbox: %w", err)
	}
	return &imapSession{client: client}, nil
}

type imapSession struct {
	client *imapclient.Client
}

func (s *imapSession) SearchUnreadFrom(addr string) ([]Handle, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Header: []imap.SearchCriteriaHeaderField{
			{Key: "From", Value: addr},
		},
	}
	data, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search from %s: %w", addr, err)
	}
	uids := data.AllUIDs()
	handles := make([]Handle, len(uids))
	for i, uid := range uids {
		handles[i] = Handle(uid)
	}
	return handles, nil
}

func (s *imapSession) Fetch(h Handle) ([]byte, error) {
	section := &imap.FetchItemBodySection{}
	opts := &imap.FetchOptions{
		BodySection: []*imap.FetchItemBodySection{section},
	}
	msgs, err := s.client.Fetch(imap.UIDSetNum(imap.UID(h)), opts).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch uid %d: %w", h, err)
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0].FindBodySection(section), nil
}

func (s *imapSession) MarkSeen(h Handle) error {
	store := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}
	if err := s.client.Store(imap.UIDSetNum(imap.UID(h)), store, nil).Close(); err != nil {
		return fmt.Errorf("imap mark seen uid %d: %w", h, err)
	}
	return nil
}

func (s *imapSession) Close() error {
	err := s.client.Logout().Wait()
	s.client.Close()
	return err
}

var _ Mailbox = (*IMAPMailbox)(nil)
var _ Session = (*imapSession)(nil)
