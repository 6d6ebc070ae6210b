package spooldir

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"weir/lib/component"
	"weir/lib/log"
	"weir/lib/properties"
	"weir/weir"

	"github.com/fsnotify/fsnotify"
	"github.com/hpcloud/tail"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

var (
	ScanProperty       = properties.NewRequiredProperty[string]("scan", "watch this directory for record files")
	BackupProperty     = properties.NewProperty[string]("backup", "if backup is empty, remove file after ingest", "")
	PatternProperty    = properties.NewProperty[string]("pattern", "regex pattern", ".*")
	ConcurrentProperty = properties.NewProperty[int]("concurrent", "ingest concurrency", 1)
	LatenessProperty   = properties.NewProperty[string]("lateness", "out-of-orderness allowance", "10s")
)

// source ingests drop-directory record files. Each line is
// "<unix-ms> <payload>"; a finished file promises a watermark at the
// greatest timestamp it carried, minus the lateness allowance.
type source struct {
	ctx        weir.Context
	logger     weir.Logger
	scanDir    string
	backupDir  string
	pattern    *regexp.Regexp
	lateness   time.Duration
	ingestPool *ants.PoolWithFunc

	emit weir.Emit

	mutex   sync.Mutex
	maxTime time.Time
}

func (s *source) Open(ctx weir.Context) (err error) {
	s.ctx = ctx
	s.logger = log.Ctx(s.ctx)
	s.scanDir = ctx.Properties().GetString(ScanProperty)
	s.backupDir = ctx.Properties().GetString(BackupProperty)

	s.pattern, err = regexp.Compile(ctx.Properties().GetString(PatternProperty))
	if err != nil {
		return err
	}
	s.lateness, err = time.ParseDuration(ctx.Properties().GetString(LatenessProperty))
	if err != nil {
		return errors.WithMessage(err, "can't parse lateness")
	}

	s.ingestPool, err = ants.NewPoolWithFunc(ctx.Properties().GetInt(ConcurrentProperty),
		func(arg interface{}) {
			name := arg.(string)
			if err := s.ingest(name); err != nil {
				s.logger.Errorw("can't ingest file.", "file", name, "err", err)
				return
			}
			s.finish(name)
		})
	return err
}

func (s *source) Close() error {
	s.ingestPool.Release()
	return nil
}

func (s *source) PropertiesDef() weir.PropertiesDef {
	return weir.PropertiesDef{ScanProperty, BackupProperty, PatternProperty, ConcurrentProperty, LatenessProperty}
}

func (s *source) Collect(emit weir.Emit) error {
	s.emit = emit

	entries, err := os.ReadDir(s.scanDir)
	if err != nil {
		return errors.WithMessage(err, "can't scan spool directory")
	}
	for _, entry := range entries {
		if !entry.IsDir() && s.pattern.MatchString(entry.Name()) {
			if err := s.ingestPool.Invoke(filepath.Join(s.scanDir, entry.Name())); err != nil {
				return err
			}
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WithMessage(err, "can't create spool watcher")
	}
	defer watcher.Close()
	if err := watcher.Add(s.scanDir); err != nil {
		return errors.WithMessage(err, "can't watch spool directory")
	}

	for {
		select {
		case <-s.ctx.Done():
			return nil
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&fsnotify.Create == fsnotify.Create && s.pattern.MatchString(path.Base(e.Name)) {
				if err := s.ingestPool.Invoke(e.Name); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Errorw("spool watcher error.", "err", err)
		}
	}
}

func (s *source) ingest(name string) error {
	t, err := tail.TailFile(name, tail.Config{MustExist: true, Logger: tail.DiscardingLogger})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	// Follow is off, so Lines closes at EOF.
	for line := range t.Lines {
		if line.Err != nil {
			return line.Err
		}
		s.emitLine(line.Text)
	}
	return t.Wait()
}

func (s *source) emitLine(line string) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(fields) != 2 {
		return
	}
	millis, err := cast.ToInt64E(fields[0])
	if err != nil {
		s.logger.Debugf("skip line with bad timestamp: %s", fields[0])
		return
	}
	eventTime := time.UnixMilli(millis)

	s.mutex.Lock()
	if eventTime.After(s.maxTime) {
		s.maxTime = eventTime
	}
	maxTime := s.maxTime
	s.mutex.Unlock()

	s.emit(&weir.Event{
		Meta:    map[string]any{},
		Message: fields[1],
		Time:    eventTime,
	})
	s.emit(weir.NewWatermark(maxTime.Add(-s.lateness)))
}

// finish moves a fully ingested file out of the spool.
func (s *source) finish(name string) {
	if s.backupDir == "" {
		if err := os.Remove(name); err != nil {
			s.logger.Warnw("can't remove ingested file.", "file", name, "err", err)
		}
		return
	}
	target := filepath.Join(s.backupDir, path.Base(name))
	if err := os.Rename(name, target); err != nil {
		s.logger.Warnw("can't backup ingested file.", "file", name, "err", err)
	}
}

func New() weir.Source {
	return &source{}
}

func init() {
	component.RegisterNewSourceFunc("spooldir", New)
}
