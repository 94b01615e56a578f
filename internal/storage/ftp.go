package storage

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPStore uploads objects to an FTP server fronted by a public base URL.
// Uploads share one control connection and run one at a time; callers
// waiting for it give up when their context ends.
type FTPStore struct {
	addr     string
	user     string
	password string
	baseURL  string

	sem  chan struct{}
	conn *ftp.ServerConn
}

func NewFTPStore(host string, port int, user, password, baseURL string) *FTPStore {
	return &FTPStore{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		user:     user,
		password: password,
		baseURL:  strings.TrimRight(baseURL, "/"),
		sem:      make(chan struct{}, 1),
	}
}

func (s *FTPStore) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *FTPStore) release() { <-s.sem }

func (s *FTPStore) connect(ctx context.Context) error {
	conn, err := ftp.Dial(s.addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connect to ftp: %w", err)
	}
	if err := conn.Login(s.user, s.password); err != nil {
		_ = conn.Quit()
		return fmt.Errorf("login to ftp: %w", err)
	}
	s.conn = conn
	return nil
}

// Put stores data under key and returns its public URL. A stale connection
// is replaced once before giving up.
func (s *FTPStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		// A started STOR runs to completion; ctx only gates new work.
		if err = ctx.Err(); err != nil {
			return "", err
		}
		if s.conn == nil {
			if err = s.connect(ctx); err != nil {
				return "", err
			}
		}
		if err = s.store(key, data); err == nil {
			return JoinURL(s.baseURL, key), nil
		}
		_ = s.conn.Quit()
		s.conn = nil
	}
	return "", err
}

func (s *FTPStore) store(key string, data []byte) error {
	// MakeDir fails for directories that already exist; Stor reports the
	// real problem if one remains.
	dir := path.Dir(key)
	built := ""
	for _, part := range strings.Split(dir, "/") {
		if part == "" || part == "." {
			continue
		}
		built = path.Join(built, part)
		_ = s.conn.MakeDir(built)
	}
	if err := s.conn.Stor(key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Close ends the FTP session.
func (s *FTPStore) Close() error {
	s.sem <- struct{}{}
	defer s.release()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Quit()
	s.conn = nil
	return err
}

// JoinURL joins a base URL and an object key.
func JoinURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}
