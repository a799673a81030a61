// Package dummydb is an in-memory storage used by tests and local demos.
package dummydb

import (
	"context"
	"sync"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/audit"
	"github.com/studash/dashboard/core/blog"
	"github.com/studash/dashboard/core/file"
	"github.com/studash/dashboard/core/grade"
	"github.com/studash/dashboard/core/task"
	"github.com/studash/dashboard/core/user"
)

type (
	DB struct {
		txMu sync.Mutex // one transaction at a time

		user  *userTable
		audit *auditTable
		grade *gradeTable
		task  *taskTable
		blog  *blogTable
		file  *fileTable
	}

	userTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]user.User
	}

	auditTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]audit.Entry
	}

	gradeTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]grade.Grade
	}

	taskTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]task.Task
	}

	blogTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]blog.Post
	}

	fileTable struct {
		sync.RWMutex
		pk    int64
		table map[int64]file.File
	}

	snapshot struct {
		userPK, auditPK, gradePK, taskPK, blogPK, filePK int64

		users  map[int64]user.User
		audit  map[int64]audit.Entry
		grades map[int64]grade.Grade
		tasks  map[int64]task.Task
		posts  map[int64]blog.Post
		files  map[int64]file.File
	}
)

var _ core.Transactor = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{
		user:  &userTable{table: make(map[int64]user.User)},
		audit: &auditTable{table: make(map[int64]audit.Entry)},
		grade: &gradeTable{table: make(map[int64]grade.Grade)},
		task:  &taskTable{table: make(map[int64]task.Task)},
		blog:  &blogTable{table: make(map[int64]blog.Post)},
		file:  &fileTable{table: make(map[int64]file.File)},
	}
}

// InTx runs fn and restores every table to its prior state if fn fails or panics.
// Writes made outside of fn while it runs are lost on rollback.
func (db *DB) InTx(_ context.Context, fn func(exec core.DBExecutor) error) (err error) {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	snap := db.snapshot()
	defer func() {
		if p := recover(); p != nil {
			db.restore(snap)
			panic(p)
		}
		if err != nil {
			db.restore(snap)
		}
	}()
	return fn(nil)
}

func (db *DB) snapshot() snapshot {
	db.user.RLock()
	db.audit.RLock()
	db.grade.RLock()
	db.task.RLock()
	db.blog.RLock()
	db.file.RLock()
	defer func() {
		db.file.RUnlock()
		db.blog.RUnlock()
		db.task.RUnlock()
		db.grade.RUnlock()
		db.audit.RUnlock()
		db.user.RUnlock()
	}()

	snap := snapshot{
		userPK:  db.user.pk,
		auditPK: db.audit.pk,
		gradePK: db.grade.pk,
		taskPK:  db.task.pk,
		blogPK:  db.blog.pk,
		filePK:  db.file.pk,
		users:   make(map[int64]user.User, len(db.user.table)),
		audit:   make(map[int64]audit.Entry, len(db.audit.table)),
		grades:  make(map[int64]grade.Grade, len(db.grade.table)),
		tasks:   make(map[int64]task.Task, len(db.task.table)),
		posts:   make(map[int64]blog.Post, len(db.blog.table)),
		files:   make(map[int64]file.File, len(db.file.table)),
	}
	for k, v := range db.user.table {
		snap.users[k] = v
	}
	for k, v := range db.audit.table {
		snap.audit[k] = v
	}
	for k, v := range db.grade.table {
		snap.grades[k] = v
	}
	for k, v := range db.task.table {
		snap.tasks[k] = v
	}
	for k, v := range db.blog.table {
		snap.posts[k] = v
	}
	for k, v := range db.file.table {
		snap.files[k] = v
	}
	return snap
}

func (db *DB) restore(snap snapshot) {
	db.user.Lock()
	db.audit.Lock()
	db.grade.Lock()
	db.task.Lock()
	db.blog.Lock()
	db.file.Lock()
	defer func() {
		db.file.Unlock()
		db.blog.Unlock()
		db.task.Unlock()
		db.grade.Unlock()
		db.audit.Unlock()
		db.user.Unlock()
	}()

	db.user.pk, db.user.table = snap.userPK, snap.users
	db.audit.pk, db.audit.table = snap.auditPK, snap.audit
	db.grade.pk, db.grade.table = snap.gradePK, snap.grades
	db.task.pk, db.task.table = snap.taskPK, snap.tasks
	db.blog.pk, db.blog.table = snap.blogPK, snap.posts
	db.file.pk, db.file.table = snap.filePK, snap.files
}
