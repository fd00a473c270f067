// Package scheduler auto-creates recurring polls on their weekly slots.
package scheduler

import (
	"time"

	"emperror.dev/errors"
	"github.com/tkuchiki/go-timezone"

	"github.com/cirelion/quorum/bot"
	"github.com/cirelion/quorum/common"
	"github.com/cirelion/quorum/polls"
	"github.com/cirelion/quorum/templates"
)

const tickInterval = time.Minute

// ScheduledJob is one pending recurrence. Jobs are created at startup for
// every recurring template and live for the whole process; only NextRun
// changes, right after each fire.
type ScheduledJob struct {
	Key         string
	ChannelID   string
	TemplateKey string
	Schedule    templates.Schedule
	NextRun     time.Time
}

type Plugin struct {
	registry  *templates.Registry
	pollsPl   *polls.Plugin
	channelID string

	// defaultTimezone applies to schedules that don't name their own.
	defaultTimezone string

	jobs map[string]*ScheduledJob
	stop chan struct{}
}

var logger = common.GetPluginLogger(&Plugin{})

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Recurring polls",
		SysName:  "scheduler",
		Category: common.PluginCategoryCore,
	}
}

var _ bot.InitHandler = (*Plugin)(nil)

func RegisterPlugin(registry *templates.Registry, pollsPlugin *polls.Plugin, conf *common.RunConfig) *Plugin {
	p := &Plugin{
		registry:        registry,
		pollsPl:         pollsPlugin,
		channelID:       conf.PollChannelID,
		defaultTimezone: conf.DefaultTimezone,
		jobs:            make(map[string]*ScheduledJob),
		stop:            make(chan struct{}),
	}

	common.RegisterPlugin(p)
	return p
}

func (p *Plugin) BotInit() {
	if p.channelID == "" {
		logger.Info("No poll channel configured, recurring polls disabled")
		return
	}

	now := time.Now()
	for _, tmpl := range p.registry.Recurring() {
		schedule := *tmpl.Schedule
		if schedule.Timezone == "" {
			schedule.Timezone = p.defaultTimezone
		}

		nextRun, err := NextRun(schedule, now)
		if err != nil {
			logger.WithError(err).WithField("template", tmpl.Key).Error("skipping recurring template with bad schedule")
			continue
		}

		p.jobs[tmpl.Key] = &ScheduledJob{
			Key:         tmpl.Key,
			ChannelID:   p.channelID,
			TemplateKey: tmpl.Key,
			Schedule:    schedule,
			NextRun:     nextRun,
		}
		logger.Infof("Scheduled %s for %s", tmpl.Key, nextRun.Format(time.RFC1123))
	}

	if len(p.jobs) > 0 {
		go p.run()
	}
}

// Stop halts the tick loop. Pending expiry timers of already created polls
// keep running.
func (p *Plugin) Stop() {
	close(p.stop)
}

func (p *Plugin) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case now := <-ticker.C:
			p.checkJobs(now)
		}
	}
}

func (p *Plugin) checkJobs(now time.Time) {
	for _, job := range p.jobs {
		if now.Before(job.NextRun) {
			continue
		}

		err := p.fire(job)
		if err != nil {
			// Transient failures self-heal at the next scheduled
			// slot, so the job advances either way.
			logger.WithError(err).WithField("job", job.Key).Error("failed creating scheduled poll")
		}

		nextRun, err := NextRun(job.Schedule, now)
		if err != nil {
			logger.WithError(err).WithField("job", job.Key).Error("failed computing next run")
			continue
		}
		job.NextRun = nextRun
		logger.Infof("Next %s poll scheduled for %s", job.Key, nextRun.Format(time.RFC1123))
	}
}

func (p *Plugin) fire(job *ScheduledJob) error {
	common.SchedulerFires.Inc()

	tmpl, ok := p.registry.Resolve(job.TemplateKey)
	if !ok {
		return errors.Errorf("template %q no longer exists", job.TemplateKey)
	}

	question := tmpl.Question
	if question == "" {
		question = tmpl.Name
	}

	_, err := p.pollsPl.CreateChannelPoll(common.BotSession, job.ChannelID, tmpl, question, tmpl.DefaultDuration, "scheduler")
	return err
}

// NextRun finds the next instant matching the schedule's weekday and
// time-of-day, strictly after now. The arithmetic happens in the
// schedule's own location so the result stays on the local wall clock
// across daylight-saving transitions.
func NextRun(schedule templates.Schedule, now time.Time) (time.Time, error) {
	loc, err := resolveLocation(schedule.Timezone)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	daysUntil := (int(schedule.Weekday) - int(local.Weekday()) + 7) % 7

	next := time.Date(local.Year(), local.Month(), local.Day()+daysUntil, schedule.Hour, schedule.Minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+daysUntil+7, schedule.Hour, schedule.Minute, 0, 0, loc)
	}

	return next, nil
}

// resolveLocation loads an IANA location, falling back to abbreviation
// lookup ("CET", "JST") for older configs.
func resolveLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}

	names, tzErr := timezone.New().GetTimezones(name)
	if tzErr != nil || len(names) == 0 {
		return nil, errors.WrapIff(err, "unknown timezone %q", name)
	}

	return time.LoadLocation(names[0])
}
