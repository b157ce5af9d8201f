// internal/stores/user-session/store.go
package usersession

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"jobportal/internal/backend"
	apperrors "jobportal/internal/common/errors"
	"jobportal/internal/common/logger"
	"jobportal/internal/common/metrics"
	"jobportal/internal/common/storage"
	"jobportal/internal/common/validation"
	"jobportal/internal/models"
)

const StoreName = "user-session"

var ErrClosed = errors.New("user session store is closed")

// Store holds the signed-in user and mirrors every change to storage under
// StorageKey. It is safe for concurrent use.
type Store struct {
	config   *Config
	auth     backend.Authenticator
	uploader CVUploader
	storage  storage.Store
	logger   logger.Logger

	mu            sync.RWMutex
	user          *models.User
	authenticated bool
	closed        bool

	persistMu sync.Mutex
	bg        sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewStore builds an anonymous session. store may be nil for an in-memory
// session; call Restore to load a persisted one.
func NewStore(config *Config, auth backend.Authenticator, uploader CVUploader, store storage.Store, log logger.Logger) *Store {
	if config == nil {
		config = LoadConfig(nil)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		config:   config,
		auth:     auth,
		uploader: uploader,
		storage:  store,
		logger:   log.WithFields(map[string]interface{}{"store": StoreName}),
		subs:     make(map[int]func(Snapshot)),
	}
}

// Restore loads the persisted record. A missing, unreadable or invalid record
// leaves the session anonymous; only storage failures are returned.
func (s *Store) Restore(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	raw, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewStorageError("get", StorageKey, err)
	}

	if err := validation.ValidateSessionRecord(raw); err != nil {
		s.logger.Warn("ignoring invalid session record", map[string]interface{}{
			"error": apperrors.MessageOf(err),
		})
		return nil
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("ignoring unreadable session record", map[string]interface{}{"error": err.Error()})
		return nil
	}

	s.mu.Lock()
	s.user = rec.User
	if s.user != nil {
		if s.user.SavedJobs == nil {
			s.user.SavedJobs = []string{}
		}
		if s.user.AppliedJobs == nil {
			s.user.AppliedJobs = []string{}
		}
	}
	s.authenticated = rec.IsAuthenticated && rec.User != nil
	s.mu.Unlock()

	s.logger.Debug("session restored", map[string]interface{}{"authenticated": rec.IsAuthenticated})
	s.publish()
	return nil
}

// Login exchanges credentials for a user. Backend rejections are returned
// with their message unmodified and leave the session as it was.
func (s *Store) Login(ctx context.Context, email, password string) error {
	start := time.Now()
	if err := validation.ValidateCredentials(email, password); err != nil {
		metrics.Observe(StoreName, "login", string(apperrors.CodeOf(err)), start)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		metrics.Observe(StoreName, "login", string(apperrors.CodeOf(err)), start)
		return err
	}

	if err := s.signIn(ctx, user); err != nil {
		return err
	}
	s.logger.Info("signed in", map[string]interface{}{"userId": user.ID, "isAdmin": user.IsAdmin})
	metrics.Observe(StoreName, "login", "success", start)
	return nil
}

func (s *Store) Signup(ctx context.Context, name, email, password string) error {
	start := time.Now()
	if err := validation.ValidateSignup(name, email, password); err != nil {
		metrics.Observe(StoreName, "signup", string(apperrors.CodeOf(err)), start)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	user, err := s.auth.Signup(ctx, name, email, password)
	if err != nil {
		s.logger.Warn("signup failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		metrics.Observe(StoreName, "signup", string(apperrors.CodeOf(err)), start)
		return err
	}

	if err := s.signIn(ctx, user); err != nil {
		return err
	}
	s.logger.Info("signed up", map[string]interface{}{"userId": user.ID})
	metrics.Observe(StoreName, "signup", "success", start)
	return nil
}

func (s *Store) signIn(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.user = user.Clone()
	s.authenticated = true
	s.mu.Unlock()

	s.persist(ctx)
	s.publish()
	return nil
}

// Logout clears the session locally and, when configured, notifies the
// backend in the background. Notification failures are only logged.
func (s *Store) Logout(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()

	s.persist(ctx)
	s.publish()
	metrics.Observe(StoreName, "logout", "success", start)

	if !s.config.NotifyLogout || s.auth == nil {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		nctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
		defer cancel()
		if err := s.auth.Logout(nctx); err != nil {
			s.logger.Warn("logout notification failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

// SaveJob adds jobID to the saved set. It reports whether state changed;
// without a user, or when already saved, it does nothing.
func (s *Store) SaveJob(ctx context.Context, jobID string) bool {
	return s.mutateUser(ctx, "save_job", func(u *models.User) bool {
		if u.HasSaved(jobID) {
			return false
		}
		u.SavedJobs = append(u.SavedJobs, jobID)
		return true
	})
}

// UnsaveJob removes every occurrence of jobID from the saved set.
func (s *Store) UnsaveJob(ctx context.Context, jobID string) bool {
	return s.mutateUser(ctx, "unsave_job", func(u *models.User) bool {
		kept := make([]string, 0, len(u.SavedJobs))
		for _, id := range u.SavedJobs {
			if id != jobID {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(u.SavedJobs) {
			return false
		}
		u.SavedJobs = kept
		return true
	})
}

// ApplyToJob records an application. Applications are never removed.
func (s *Store) ApplyToJob(ctx context.Context, jobID string) bool {
	return s.mutateUser(ctx, "apply_job", func(u *models.User) bool {
		if u.HasApplied(jobID) {
			return false
		}
		u.AppliedJobs = append(u.AppliedJobs, jobID)
		return true
	})
}

func (s *Store) mutateUser(ctx context.Context, op string, fn func(u *models.User) bool) bool {
	start := time.Now()
	s.mu.Lock()
	if s.closed || s.user == nil {
		s.mu.Unlock()
		metrics.Observe(StoreName, op, "noop", start)
		return false
	}
	next := s.user.Clone()
	changed := fn(next)
	if changed {
		s.user = next
	}
	s.mu.Unlock()

	if !changed {
		metrics.Observe(StoreName, op, "noop", start)
		return false
	}
	s.persist(ctx)
	s.publish()
	metrics.Observe(StoreName, op, "success", start)
	return true
}

// UploadCV validates and uploads a CV for the signed-in user, then records
// its URL. On any failure the session is left untouched.
func (s *Store) UploadCV(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	start := time.Now()
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	if user == nil {
		err := apperrors.NewNotAuthenticatedError("upload CV")
		metrics.Observe(StoreName, "upload_cv", string(err.Code), start)
		return "", err
	}

	if err := validation.ValidateCVFile(filename, size, s.config.MaxUploadBytes, s.config.AllowedExtensions); err != nil {
		metrics.Observe(StoreName, "upload_cv", string(apperrors.CodeOf(err)), start)
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	body := &cappedReader{r: r, remaining: s.config.MaxUploadBytes}
	url, err := s.uploader.UploadCV(ctx, filename, body)
	if body.exceeded {
		err = apperrors.NewUploadFailedError(errCVTooLarge)
	}
	if err != nil {
		s.logger.Error("cv upload failed", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
		metrics.Observe(StoreName, "upload_cv", string(apperrors.CodeOf(err)), start)
		return "", err
	}

	s.mu.Lock()
	if s.user == nil || s.user.ID != user.ID {
		s.mu.Unlock()
		err := apperrors.NewNotAuthenticatedError("upload CV")
		metrics.Observe(StoreName, "upload_cv", string(err.Code), start)
		return "", err
	}
	next := s.user.Clone()
	next.CV = url
	s.user = next
	s.mu.Unlock()

	s.persist(ctx)
	s.publish()
	s.logger.Info("cv uploaded", map[string]interface{}{"userId": user.ID})
	metrics.Observe(StoreName, "upload_cv", "success", start)
	return url, nil
}

var errCVTooLarge = errors.New("cv stream exceeds the upload limit")

// cappedReader fails the read once more than remaining bytes arrive, so a
// body longer than its declared size is rejected instead of truncated.
type cappedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.exceeded {
		return 0, errCVTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	if int64(n) > c.remaining {
		n = int(c.remaining)
		c.remaining = 0
		c.exceeded = true
		return n, errCVTooLarge
	}
	c.remaining -= int64(n)
	return n, err
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{User: s.user.Clone(), IsAuthenticated: s.authenticated}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously and must not call Subscribe or the returned func.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close waits for pending logout notifications and drops subscribers. It
// does not close the storage backend, which the caller owns.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.bg.Wait()

	s.subMu.Lock()
	s.subs = make(map[int]func(Snapshot))
	s.subMu.Unlock()
	return nil
}

// persist writes the current state. persistMu orders writes so the last
// one always carries the newest state. Failures are logged, not returned:
// the in-memory session stays authoritative.
func (s *Store) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	snap := s.Snapshot()
	data, err := json.Marshal(record{User: snap.User, IsAuthenticated: snap.IsAuthenticated})
	if err != nil {
		s.logger.Error("encode session record", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.storage.Put(ctx, StorageKey, data); err != nil {
		s.logger.Error("persist session failed", map[string]interface{}{
			"error": apperrors.NewStorageError("put", StorageKey, err).Error(),
		})
	}
}

func (s *Store) publish() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}
