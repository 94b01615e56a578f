package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
)

// fakeStore is an in-memory implementation of every store interface. A single
// mutex stands in for the database's row locks.
type fakeStore struct {
	mu sync.Mutex

	accounts  map[string]*model.Account
	byFID     map[int64]string
	prompts   map[string]*model.Prompt
	memes     map[string]*model.Meme
	votes     map[[2]string]model.Vote
	shares    map[[2]string]bool
	purchases map[string]model.Purchase
	comments  []model.Comment

	createCalls int
	failCreate  error
	// clock, when set, is the database time reported by Now.
	clock func() time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:  make(map[string]*model.Account),
		byFID:     make(map[int64]string),
		prompts:   make(map[string]*model.Prompt),
		memes:     make(map[string]*model.Meme),
		votes:     make(map[[2]string]model.Vote),
		shares:    make(map[[2]string]bool),
		purchases: make(map[string]model.Purchase),
	}
}

func (f *fakeStore) addAccount(likes int64) *model.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &model.Account{
		ID:          uuid.NewString(),
		FID:         int64(len(f.accounts) + 1),
		Username:    "user",
		LikeBalance: decimal.NewFromInt(likes),
	}
	f.accounts[a.ID] = a
	f.byFID[a.FID] = a.ID
	return a
}

func (f *fakeStore) addPrompt(open bool) *model.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	until := time.Now().Add(time.Hour)
	if !open {
		until = time.Now().Add(-time.Hour)
	}
	p := &model.Prompt{ID: uuid.NewString(), Text: PromptLibrary[0], DayKey: "2026-10-15", ActiveUntil: until, IsActive: open}
	f.prompts[p.ID] = p
	return p
}

func (f *fakeStore) addMeme(promptID, creatorID string) *model.Meme {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &model.Meme{ID: uuid.NewString(), PromptID: promptID, CreatorID: creatorID, Caption: "c", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.memes[m.ID] = m
	return m
}

func (f *fakeStore) account(id string) model.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.accounts[id]
}

// AccountStore

func (f *fakeStore) FindByID(_ context.Context, id string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) Upsert(_ context.Context, ident model.Identity, startingLikes decimal.Decimal) (*model.Account, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byFID[ident.FID]; ok {
		a := f.accounts[id]
		a.Username = ident.Username
		if ident.WalletAddress != nil {
			a.WalletAddress = ident.WalletAddress
		}
		cp := *a
		return &cp, false, nil
	}
	a := &model.Account{
		ID:            uuid.NewString(),
		FID:           ident.FID,
		Username:      ident.Username,
		DisplayName:   ident.DisplayName,
		PfpURL:        ident.PfpURL,
		WalletAddress: ident.WalletAddress,
		LikeBalance:   startingLikes,
	}
	f.accounts[a.ID] = a
	f.byFID[a.FID] = a.ID
	cp := *a
	return &cp, true, nil
}

func (f *fakeStore) SetWallet(_ context.Context, id, address string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	a.WalletAddress = &address
	cp := *a
	return &cp, nil
}

func (f *fakeStore) GetStats(context.Context) (*model.StatsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.StatsResponse{TotalAccounts: len(f.accounts), TotalMemes: len(f.memes), TotalVotes: len(f.votes)}, nil
}

// fakePrompts adapts fakeStore to PromptStore, whose FindByID collides with
// the account method name.
type fakePrompts struct{ *fakeStore }

func (p fakePrompts) FindByID(_ context.Context, id string) (*model.Prompt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.prompts[id]
	if !ok {
		return nil, model.ErrPromptNotFound
	}
	cp := *pr
	return &cp, nil
}

func (p fakePrompts) GetOrCreate(_ context.Context, dayKey string, activeUntil time.Time, text string) (*model.Prompt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	for _, pr := range p.prompts {
		if pr.DayKey == dayKey && pr.IsActive {
			cp := *pr
			return &cp, nil
		}
	}
	pr := &model.Prompt{ID: uuid.NewString(), Text: text, DayKey: dayKey, ActiveUntil: activeUntil, IsActive: true}
	p.prompts[pr.ID] = pr
	cp := *pr
	return &cp, nil
}

func (p fakePrompts) DeactivateExpired(_ context.Context, now time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, pr := range p.prompts {
		if pr.IsActive && !pr.ActiveUntil.After(now) {
			pr.IsActive = false
			n++
		}
	}
	return n, nil
}

// fakeMemes adapts fakeStore to MemeStore.
type fakeMemes struct{ *fakeStore }

func (m fakeMemes) Create(_ context.Context, meme *model.Meme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	meme.CreatedAt = time.Now()
	meme.UpdatedAt = meme.CreatedAt
	cp := *meme
	m.memes[meme.ID] = &cp
	return nil
}

func (m fakeMemes) FindByID(_ context.Context, id string) (*model.Meme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meme, ok := m.memes[id]
	if !ok {
		return nil, model.ErrMemeNotFound
	}
	cp := *meme
	return &cp, nil
}

func (m fakeMemes) ListForPrompt(_ context.Context, q model.ListMemesQuery) ([]model.Meme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Meme{}
	for _, meme := range m.memes {
		if meme.PromptID == q.PromptID {
			out = append(out, *meme)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if q.Order == model.OrderTop && out[i].LikeCount != out[j].LikeCount {
			return out[i].LikeCount > out[j].LikeCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if q.Offset >= len(out) {
		return []model.Meme{}, nil
	}
	out = out[q.Offset:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m fakeMemes) UpdatedSince(_ context.Context, promptID string, since time.Time, limit int) ([]model.Meme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Meme
	for _, meme := range m.memes {
		if meme.PromptID == promptID && !meme.UpdatedAt.Before(since) {
			out = append(out, *meme)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m fakeMemes) Now(context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clock != nil {
		return m.clock(), nil
	}
	return time.Now(), nil
}

func (m fakeMemes) ReconcileCounters(_ context.Context, memeID string) (model.MemeCounters, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meme, ok := m.memes[memeID]
	if !ok {
		return model.MemeCounters{}, false, model.ErrMemeNotFound
	}
	count := 0
	pool := decimal.Zero
	for key, v := range m.votes {
		if key[0] == memeID {
			count++
			pool = pool.Add(v.PoolContribution)
		}
	}
	drifted := meme.LikeCount != count || !meme.RewardPool.Equal(pool)
	meme.LikeCount = count
	meme.RewardPool = pool
	return model.MemeCounters{ID: memeID, PromptID: meme.PromptID, LikeCount: count, RewardPool: pool}, drifted, nil
}

// VoteStore

func (f *fakeStore) CastVote(_ context.Context, memeID, voterID string, terms model.VoteTerms) (*model.VoteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meme, ok := f.memes[memeID]
	if !ok {
		return nil, model.ErrMemeNotFound
	}
	voter, ok := f.accounts[voterID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	creator, ok := f.accounts[meme.CreatorID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	key := [2]string{memeID, voterID}
	if _, ok := f.votes[key]; ok {
		return nil, model.ErrAlreadyVoted
	}
	if voter.LikeBalance.LessThan(terms.Cost) {
		return nil, model.ErrInsufficientBalance
	}
	f.votes[key] = model.Vote{MemeID: memeID, VoterID: voterID, Cost: terms.Cost, PoolContribution: terms.PoolContribution, CreatorReward: terms.CreatorReward}
	voter.LikeBalance = voter.LikeBalance.Sub(terms.Cost)
	meme.LikeCount++
	meme.RewardPool = meme.RewardPool.Add(terms.PoolContribution)
	creator.TokenBalance = creator.TokenBalance.Add(terms.CreatorReward)
	creator.TotalEarned = creator.TotalEarned.Add(terms.CreatorReward)
	return &model.VoteResult{
		LikeBalance: voter.LikeBalance,
		Meme:        model.MemeCounters{ID: memeID, PromptID: meme.PromptID, LikeCount: meme.LikeCount, RewardPool: meme.RewardPool},
	}, nil
}

func (f *fakeStore) HasVoted(_ context.Context, memeID, voterID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.votes[[2]string{memeID, voterID}]
	return ok, nil
}

// PurchaseStore

func (f *fakeStore) Confirm(_ context.Context, accountID, txRef string, likeAmount decimal.Decimal) (*model.PurchaseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	if p, ok := f.purchases[txRef]; ok {
		if p.AccountID != accountID {
			return nil, model.ErrPurchaseRefClaimed
		}
		return &model.PurchaseResult{LikeBalance: a.LikeBalance, Duplicate: true}, nil
	}
	f.purchases[txRef] = model.Purchase{TxRef: txRef, AccountID: accountID, LikeAmount: likeAmount}
	a.LikeBalance = a.LikeBalance.Add(likeAmount)
	return &model.PurchaseResult{LikeBalance: a.LikeBalance}, nil
}

func (f *fakeStore) FindByRef(_ context.Context, txRef string) (*model.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[txRef]
	if !ok {
		return nil, model.ErrPurchaseNotFound
	}
	return &p, nil
}

// ShareStore

func (f *fakeStore) Reward(_ context.Context, memeID, accountID string, reward decimal.Decimal) (*model.ShareResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.memes[memeID]; !ok {
		return nil, model.ErrMemeNotFound
	}
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	key := [2]string{memeID, accountID}
	if f.shares[key] {
		return &model.ShareResult{Rewarded: false, LikeBalance: a.LikeBalance}, nil
	}
	f.shares[key] = true
	a.LikeBalance = a.LikeBalance.Add(reward)
	return &model.ShareResult{Rewarded: true, LikeBalance: a.LikeBalance}, nil
}

// fakeComments adapts fakeStore to CommentStore.
type fakeComments struct{ *fakeStore }

func (c fakeComments) Create(_ context.Context, comment *model.Comment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	comment.CreatedAt = time.Now()
	c.comments = append(c.comments, *comment)
	return nil
}

func (c fakeComments) ListForMeme(_ context.Context, memeID string) ([]model.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []model.Comment{}
	for _, cm := range c.comments {
		if cm.MemeID == memeID {
			out = append(out, cm)
		}
	}
	return out, nil
}

func (c fakeComments) CreatedSince(_ context.Context, promptID string, since time.Time, limit int) ([]model.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.Comment
	for _, cm := range c.comments {
		if m, ok := c.memes[cm.MemeID]; ok && m.PromptID == promptID && !cm.CreatedAt.Before(since) {
			out = append(out, cm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeObjects records stored objects.
type fakeObjects struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (o *fakeObjects) Put(_ context.Context, key string, _ []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return "", o.err
	}
	o.keys = append(o.keys, key)
	return "https://cdn.test/" + key, nil
}
