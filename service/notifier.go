package service

import "github.com/google/uuid"

// 实时事件名，与前端约定保持一致
const (
	EventTicketUpdate    = "ticket_update"
	EventPaperApproved   = "paper_approved"
	EventNewPaperPending = "new_paper_pending"
	EventPaperTakenDown  = "paper_taken_down"
)

// Notifier 事务提交之后的事件扇出。尽力而为：投递失败只记日志，
// 绝不回滚或重试已提交的写入。
type Notifier interface {
	Broadcast(event string, payload interface{})
	ToUser(userID uuid.UUID, event string, payload interface{})
}

// Fanout 按顺序通知一组 Notifier
type Fanout []Notifier

func (f Fanout) Broadcast(event string, payload interface{}) {
	for _, n := range f {
		n.Broadcast(event, payload)
	}
}

func (f Fanout) ToUser(userID uuid.UUID, event string, payload interface{}) {
	for _, n := range f {
		n.ToUser(userID, event, payload)
	}
}

// NopNotifier 未接任何实时通道时使用
type NopNotifier struct{}

func (NopNotifier) Broadcast(string, interface{})            {}
func (NopNotifier) ToUser(uuid.UUID, string, interface{})    {}
