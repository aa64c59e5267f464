package event

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuffer 每个订阅者的默认缓冲大小
const DefaultBuffer = 64

// Bus 进程内事件总线。
// 发布不会阻塞：有界订阅缓冲满时只丢弃该订阅者的这条事件；无界订阅不丢。
// 单个订阅者收到的顺序与发布顺序一致。
type Bus struct {
	buffer int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription 一个订阅者
type Subscription struct {
	bus     *Bus
	ch      chan Event
	types   map[Type]struct{}
	userID  uint64
	once    sync.Once
	dropped atomic.Uint64

	// 无界订阅：Publish 追加到 queue，pump 搬到 ch
	unbounded bool
	qmu       sync.Mutex
	cond      *sync.Cond
	queue     []Event
	stopped   bool
	done      chan struct{}
}

// SubscribeOption 订阅选项
type SubscribeOption func(*Subscription)

// OfTypes 只接收这些类型
func OfTypes(types ...Type) SubscribeOption {
	return func(s *Subscription) {
		if len(types) == 0 {
			return
		}
		s.types = make(map[Type]struct{}, len(types))
		for _, t := range types {
			s.types[t] = struct{}{}
		}
	}
}

// ForUser 只接收发给 userID 的事件。不匹配的事件不会占用缓冲。
func ForUser(userID uint64) SubscribeOption {
	return func(s *Subscription) {
		s.userID = userID
	}
}

// Unbounded 不限缓冲，发布方永远不会因为这个订阅丢事件。
// 只给引擎自己的投递通道用，消费方必须持续读取。
func Unbounded() SubscribeOption {
	return func(s *Subscription) {
		s.unbounded = true
	}
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		buffer: buffer,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Subscribe 不传选项则订阅全部事件。
// 总线已关闭时返回一个已关闭的订阅。
func (b *Bus) Subscribe(opts ...SubscribeOption) *Subscription {
	s := &Subscription{bus: b}
	for _, opt := range opts {
		opt(s)
	}
	if s.unbounded {
		s.ch = make(chan Event)
		s.cond = sync.NewCond(&s.qmu)
		s.done = make(chan struct{})
	} else {
		s.ch = make(chan Event, b.buffer)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	b.subs[s] = struct{}{}
	if s.unbounded {
		go s.pump()
	}
	return s
}

// Publish 投递给所有关心该事件的订阅者
func (b *Bus) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		if s.wants(evt) {
			s.deliver(evt)
		}
	}
}

// SubscriberCount 当前订阅者数量
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close 关闭总线和全部订阅
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for s := range subs {
		s.shutdown()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

func (s *Subscription) wants(evt Event) bool {
	if s.userID != 0 && evt.UserID != s.userID {
		return false
	}
	if s.types == nil {
		return true
	}
	_, ok := s.types[evt.Type]
	return ok
}

// deliver 在 Publish 的读锁下调用
func (s *Subscription) deliver(evt Event) {
	if s.unbounded {
		s.qmu.Lock()
		if !s.stopped {
			s.queue = append(s.queue, evt)
			s.cond.Signal()
		}
		s.qmu.Unlock()
		return
	}
	select {
	case s.ch <- evt:
	default:
		// 缓冲满，丢弃避免阻塞
		s.dropped.Add(1)
	}
}

func (s *Subscription) pump() {
	defer close(s.ch)
	for {
		s.qmu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped {
			s.queue = nil
			s.qmu.Unlock()
			return
		}
		evt := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		select {
		case s.ch <- evt:
		case <-s.done:
			return
		}
	}
}

// shutdown 有界订阅直接关 ch；无界订阅由 pump 退出时关
func (s *Subscription) shutdown() {
	s.once.Do(func() {
		if !s.unbounded {
			close(s.ch)
			return
		}
		s.qmu.Lock()
		s.stopped = true
		s.cond.Broadcast()
		s.qmu.Unlock()
		close(s.done)
	})
}

// C 事件通道，订阅关闭后通道关闭
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Dropped 因缓冲满被丢弃的事件数
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Pending 无界订阅里还没被读走的事件数
func (s *Subscription) Pending() int {
	if !s.unbounded {
		return len(s.ch)
	}
	s.qmu.Lock()
	defer s.qmu.Unlock()
	return len(s.queue)
}

// Close 取消订阅，可重复调用
func (s *Subscription) Close() {
	s.bus.remove(s)
	// remove 持写锁后 Publish 不会再写入该订阅
	s.shutdown()
}
