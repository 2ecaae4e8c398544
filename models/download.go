package models

import "github.com/google/uuid"

// Download 记录用户已获得某份真题的下载权。"是否已购买"只看是否存在记录，
// 允许重复行，但同一 (user, paper) 至多扣一次券。
type Download struct {
	Base
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_downloads_user_paper" json:"user_id"`
	PaperID uuid.UUID `gorm:"type:uuid;not null;index:idx_downloads_user_paper" json:"paper_id"`
	Paper   *Paper    `gorm:"foreignKey:PaperID" json:"paper,omitempty"`
}
