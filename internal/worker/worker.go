package worker

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type Worker struct {
	id         int
	jobQueue   chan Job
	workerPool chan chan Job
	quitChan   chan bool

	logger logrus.FieldLogger
}

func NewWorker(id int, workerPool chan chan Job, logger logrus.FieldLogger) Worker {
	return Worker{
		id:         id,
		jobQueue:   make(chan Job),
		workerPool: workerPool,
		quitChan:   make(chan bool),

		logger: logger.WithField("component", "worker"),
	}
}

func (w Worker) start(wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()
		for {
			// Register this worker as idle
			select {
			case w.workerPool <- w.jobQueue:
			case <-w.quitChan:
				w.logger.Debugf("Stopping Worker %04d", w.id)
				return
			}

			select {
			case job := <-w.jobQueue:
				w.logger.Debugf("Starting job %s", job.Name())
				if err := job.Do(); err != nil {
					w.logger.Errorf("error while processing %s: %v", job.Name(), err)
				}
			case <-w.quitChan:
				w.logger.Debugf("Stopping Worker %04d", w.id)
				return
			}
		}
	}()
}

func (w Worker) stop() {
	go func() {
		w.quitChan <- true
	}()
}

// Dispatcher hands the jobs sent on its queue to the next idle worker.
type Dispatcher struct {
	workerPool chan chan Job
	maxWorkers int
	jobQueue   chan Job
	workers    []Worker
	quit       chan struct{}
	wg         sync.WaitGroup
	once       sync.Once

	logger logrus.FieldLogger
}

func NewDispatcher(jobQueue chan Job, maxWorkers int, logger logrus.FieldLogger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	return &Dispatcher{
		jobQueue:   jobQueue,
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		quit:       make(chan struct{}),

		logger: logger.WithField("component", "dispatcher"),
	}
}

func (d *Dispatcher) Run() {
	for i := 0; i < d.maxWorkers; i++ {
		worker := NewWorker(i+1, d.workerPool, d.logger)
		d.workers = append(d.workers, worker)
		d.wg.Add(1)
		worker.start(&d.wg)
	}

	go d.dispatch()
}

// Stop asks every worker to quit after its current job and waits for them.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.quit)
		for _, w := range d.workers {
			w.stop()
		}
		d.wg.Wait()
	})
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			d.logger.Debugf("Job enqueued: %s", job.Name())
			select {
			case workerJobQueue := <-d.workerPool:
				select {
				case workerJobQueue <- job:
				case <-d.quit:
					return
				}
			case <-d.quit:
				d.logger.Warnf("dropping job %s: dispatcher stopped", job.Name())
				return
			}
		case <-d.quit:
			return
		}
	}
}
