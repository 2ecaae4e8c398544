package repository

import "gorm.io/gorm"

// Repos 一组绑定在同一个数据库句柄（或事务）上的仓储
type Repos struct {
	Users         UserRepository
	Papers        PaperRepository
	Downloads     DownloadRepository
	Verifications VerificationRepository
}

// Store 向 service 层提供仓储访问。Transaction 内拿到的 Repos 绑定同一个
// 数据库事务，回调返回错误则整体回滚。
type Store interface {
	Repos() Repos
	Transaction(fn func(Repos) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

func buildRepos(db *gorm.DB) Repos {
	return Repos{
		Users:         NewUserRepository(db),
		Papers:        NewPaperRepository(db),
		Downloads:     NewDownloadRepository(db),
		Verifications: NewVerificationRepository(db),
	}
}

func (s *GormStore) Repos() Repos {
	return buildRepos(s.db)
}

func (s *GormStore) Transaction(fn func(Repos) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepos(tx))
	})
}
