// Package bt 提供最小的行为树节点：选择、顺序、条件、动作与装饰器
package bt

type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	}
	return "unknown"
}

type Node interface {
	Tick(bb Blackboard) Status
}

// Blackboard 节点间共享的数据，由使用方断言为具体类型
type Blackboard interface{}

// Selector 依次执行子节点，直到某个子节点成功或仍在运行
type Selector struct {
	Children []Node
}

func (s *Selector) Tick(bb Blackboard) Status {
	for _, child := range s.Children {
		switch child.Tick(bb) {
		case StatusSuccess:
			return StatusSuccess
		case StatusRunning:
			return StatusRunning
		case StatusFailure:
			continue
		}
	}
	return StatusFailure
}

// Sequence 依次执行子节点，遇到失败或运行中立即返回
type Sequence struct {
	Children []Node
}

func (s *Sequence) Tick(bb Blackboard) Status {
	for _, child := range s.Children {
		switch child.Tick(bb) {
		case StatusFailure:
			return StatusFailure
		case StatusRunning:
			return StatusRunning
		case StatusSuccess:
			continue
		}
	}
	return StatusSuccess
}

type ConditionFunc func(bb Blackboard) bool

type Condition struct {
	Check ConditionFunc
}

func (c *Condition) Tick(bb Blackboard) Status {
	if c.Check == nil {
		return StatusFailure
	}
	if c.Check(bb) {
		return StatusSuccess
	}
	return StatusFailure
}

type ActionFunc func(bb Blackboard) Status

type Action struct {
	Do ActionFunc
}

func (a *Action) Tick(bb Blackboard) Status {
	if a.Do == nil {
		return StatusFailure
	}
	return a.Do(bb)
}

// Succeeder 执行子节点后总是返回成功（运行中除外）
type Succeeder struct {
	Child Node
}

func (s *Succeeder) Tick(bb Blackboard) Status {
	if s.Child != nil && s.Child.Tick(bb) == StatusRunning {
		return StatusRunning
	}
	return StatusSuccess
}
