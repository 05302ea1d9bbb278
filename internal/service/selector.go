// Package service はビジネスロジックを提供します
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"iryohi/internal/dataset"
)

// SelectorID はセレクタの識別子です
type SelectorID string

// セレクタ
const (
	SelectorA SelectorID = "a" // 棒グラフ（第1軸）
	SelectorB SelectorID = "b" // 折れ線（第2軸）
)

// デフォルトの選択値
const (
	DefaultA = dataset.ColumnTotalCost
	DefaultB = dataset.ColumnGDPRatio
)

// ErrUnknownSelector は存在しないセレクタを指定した場合のエラー
var ErrUnknownSelector = errors.New("unknown selector")

// ErrUnknownOption は選択肢にない値を選択した場合のエラー
var ErrUnknownOption = errors.New("unknown option")

// SelectionState は2つのセレクタの現在値です
type SelectionState struct {
	A dataset.ColumnRef `json:"a"`
	B dataset.ColumnRef `json:"b"`
}

// Option はセレクタの選択肢です
type Option struct {
	Label string            `json:"label"`
	Value dataset.ColumnRef `json:"value"`
}

// SelectionChanged はセレクタの値が置き換えられたことを通知するイベントです
type SelectionChanged struct {
	Selector SelectorID        `json:"selector"`
	Value    dataset.ColumnRef `json:"value"`
	State    SelectionState    `json:"state"` // 置き換え後の状態
}

// selectionEventBuffer はイベントチャンネルのバッファサイズ
const selectionEventBuffer = 64

// SelectorPair は独立した2つの単一選択セレクタです
//
// 選択肢はデータセットの年次以外の列で、2つのセレクタで共通。
// 値は常にどれか1つの列を指しており、空になることはない。
// 2つのセレクタの間に制約はなく、同じ列を選んでもよい。
type SelectorPair struct {
	// sendMu は状態の置き換えとイベント送信の順序をそろえる
	// 送信待ちの間も mu は保持しないため、State は待たされない
	sendMu sync.Mutex

	mu      sync.Mutex
	options []Option
	state   SelectionState
	events  chan SelectionChanged
}

// NewSelectorPair はデータセットの列から選択肢を作り、デフォルト値を選択した状態で返します
// デフォルト値が選択肢にない場合は先頭の選択肢を使う
func NewSelectorPair(ds *dataset.Dataset) *SelectorPair {
	cols := ds.ValueColumns()
	options := make([]Option, 0, len(cols))
	for _, c := range cols {
		options = append(options, Option{Label: string(c.Name), Value: c.Name})
	}

	p := &SelectorPair{
		options: options,
		events:  make(chan SelectionChanged, selectionEventBuffer),
	}
	p.state = SelectionState{
		A: p.orFirst(DefaultA),
		B: p.orFirst(DefaultB),
	}

	log.Printf("[SelectorPair] Initialized: options=%d, a=%s, b=%s", len(options), p.state.A, p.state.B)
	return p
}

// Options は選択肢をデータセット順で返します
func (p *SelectorPair) Options() []Option {
	out := make([]Option, len(p.options))
	copy(out, p.options)
	return out
}

// State は現在の選択状態を返します
func (p *SelectorPair) State() SelectionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Events は選択変更イベントを受け取るチャンネルを返します
// イベントは Select が呼ばれた順に届く
func (p *SelectorPair) Events() <-chan SelectionChanged {
	return p.events
}

// Select はセレクタの値を置き換えて変更イベントを送信します
//
// 現在と同じ値を選択した場合もイベントを送信する。
// イベントのバッファが埋まっている間は送信を待つが、その間も State は
// 置き換え後の値を返す。ctx がイベント送信前に終了した場合は値を元に戻して
// エラーを返す。
func (p *SelectorPair) Select(ctx context.Context, id SelectorID, value dataset.ColumnRef) (SelectionState, error) {
	if !p.has(value) {
		return p.State(), fmt.Errorf("%w: %s", ErrUnknownOption, value)
	}
	if id != SelectorA && id != SelectorB {
		return p.State(), fmt.Errorf("%w: %s", ErrUnknownSelector, id)
	}

	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.Lock()
	prev := p.state
	if id == SelectorA {
		p.state.A = value
	} else {
		p.state.B = value
	}
	next := p.state
	p.mu.Unlock()

	ev := SelectionChanged{Selector: id, Value: value, State: next}
	select {
	case p.events <- ev:
	case <-ctx.Done():
		// sendMu を保持しているので他の Select は割り込んでいない
		p.mu.Lock()
		p.state = prev
		p.mu.Unlock()
		log.Printf("[SelectorPair] Select failed: selector=%s, value=%s, error=%v", id, value, ctx.Err())
		return prev, ctx.Err()
	}

	log.Printf("[SelectorPair] Select completed: selector=%s, value=%s", id, value)
	return next, nil
}

func (p *SelectorPair) has(value dataset.ColumnRef) bool {
	for _, o := range p.options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func (p *SelectorPair) orFirst(value dataset.ColumnRef) dataset.ColumnRef {
	if p.has(value) || len(p.options) == 0 {
		return value
	}
	return p.options[0].Value
}
