package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/cipher"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

// AttachmentInput describes an uploaded file. Key is the plaintext file key;
// it is stored encrypted with the user's key.
type AttachmentInput struct {
	IV       string
	Salt     string
	Alg      string
	Length   int64
	Key      string
	Metadata core.AttachmentMetadata
}

type Attachments struct {
	env
	coll   *typed.Collection[core.Attachment]
	keys   cipher.KeyProvider
	cipher cipher.Cipher
	grace  time.Duration
}

func newAttachments(e env, repo core.Repository, keys cipher.KeyProvider, c cipher.Cipher, grace time.Duration) *Attachments {
	return &Attachments{
		env:    e,
		coll:   typed.NewCollection[core.Attachment](CollectionAttachments, repo, e.collectionOptions()...),
		keys:   keys,
		cipher: c,
		grace:  grace,
	}
}

// Add registers an attachment for noteID. Files are deduplicated by hash:
// adding a known hash only records the extra note.
func (a *Attachments) Add(ctx context.Context, in AttachmentInput, noteID string) (core.Attachment, error) {
	if in.Metadata.Hash == "" {
		return core.Attachment{}, fmt.Errorf("%w: hash is required", core.ErrInvalidAttachment)
	}
	old, ok, err := a.byHash(ctx, in.Metadata.Hash)
	if err != nil {
		return core.Attachment{}, err
	}
	if ok {
		if noteID != "" {
			old.NoteIDs = union(old.NoteIDs, noteID)
		}
		old.DateDeleted = 0
		old.DateModified = a.now()
		return old, a.coll.Add(ctx, old)
	}

	if in.IV == "" || in.Length <= 0 || in.Alg == "" || in.Key == "" || in.Metadata.Filename == "" {
		return core.Attachment{}, fmt.Errorf("%w: iv, length, alg, key and filename are required", core.ErrInvalidAttachment)
	}
	key, err := a.userKey(ctx)
	if err != nil {
		return core.Attachment{}, err
	}
	enc, err := a.cipher.Encrypt(key, []byte(in.Key))
	if err != nil {
		return core.Attachment{}, fmt.Errorf("failed to encrypt attachment key: %w", err)
	}

	now := a.now()
	att := core.Attachment{
		Base:     core.Base{ID: core.NewID(), Type: core.KindAttachment, DateCreated: now, DateModified: now},
		NoteIDs:  []string{},
		IV:       in.IV,
		Salt:     in.Salt,
		Alg:      in.Alg,
		Length:   in.Length,
		Key:      &enc,
		Metadata: in.Metadata,
	}
	if noteID != "" {
		att.NoteIDs = []string{noteID}
	}
	if att.Metadata.HashType == "" {
		att.Metadata.HashType = "xxh64"
	}
	return att, a.coll.Add(ctx, att)
}

func (a *Attachments) userKey(ctx context.Context) (cipher.Key, error) {
	if a.keys == nil {
		return cipher.Key{}, core.ErrEncryptionKey
	}
	key, err := a.keys.EncryptionKey(ctx)
	if err != nil {
		return cipher.Key{}, fmt.Errorf("%w: %w", core.ErrEncryptionKey, err)
	}
	return key, nil
}

// Merge stores a synced attachment as is.
func (a *Attachments) Merge(ctx context.Context, att core.Attachment) error {
	return a.coll.Add(ctx, att)
}

// Attachment finds an attachment by id or content hash.
func (a *Attachments) Attachment(ctx context.Context, hashOrID string) (core.Attachment, error) {
	if att, err := a.coll.Get(ctx, hashOrID); err == nil {
		return att, nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.Attachment{}, err
	}
	att, ok, err := a.byHash(ctx, hashOrID)
	if err != nil {
		return core.Attachment{}, err
	}
	if ok {
		return att, nil
	}
	return core.Attachment{}, fmt.Errorf("attachment %s: %w", hashOrID, core.ErrNotFound)
}

func (a *Attachments) byHash(ctx context.Context, hash string) (core.Attachment, bool, error) {
	all, err := a.coll.All(ctx)
	if err != nil {
		return core.Attachment{}, false, err
	}
	i := slices.IndexFunc(all, func(att core.Attachment) bool { return att.Metadata.Hash == hash })
	if i < 0 {
		return core.Attachment{}, false, nil
	}
	att := all[i]
	att.NoteIDs = slices.Clone(att.NoteIDs)
	return att, true, nil
}

func (a *Attachments) All(ctx context.Context) ([]core.Attachment, error) {
	return a.coll.All(ctx)
}

// OfNote returns the attachments referenced by noteID.
func (a *Attachments) OfNote(ctx context.Context, noteID string) ([]core.Attachment, error) {
	all, err := a.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(att core.Attachment) bool {
		return !slices.Contains(att.NoteIDs, noteID)
	}), nil
}

// Delete releases noteID's claim on an attachment. An attachment no note
// refers to is stamped and later purged by Cleanup.
func (a *Attachments) Delete(ctx context.Context, hashOrID, noteID string) error {
	att, err := a.Attachment(ctx, hashOrID)
	if err != nil {
		return err
	}
	att.NoteIDs = without(att.NoteIDs, noteID)
	if len(att.NoteIDs) == 0 && att.DateDeleted == 0 {
		att.DateDeleted = a.now()
	}
	att.DateModified = a.now()
	return a.coll.Add(ctx, att)
}

// ReleaseNote releases every attachment claimed by noteID.
func (a *Attachments) ReleaseNote(ctx context.Context, noteID string) error {
	atts, err := a.OfNote(ctx, noteID)
	if err != nil {
		return err
	}
	for _, att := range atts {
		if err := a.Delete(ctx, att.ID, noteID); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes an attachment and announces it so the file can be dropped.
func (a *Attachments) Remove(ctx context.Context, hashOrID string) error {
	att, err := a.Attachment(ctx, hashOrID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := a.coll.Delete(ctx, att.ID); err != nil {
		return err
	}
	if a.bus != nil {
		a.bus.Publish(ctx, core.Event{Type: core.EventAttachmentDeleted, Collection: CollectionAttachments, ID: att.Metadata.Hash})
	}
	return nil
}

// Cleanup removes released attachments once the grace period has passed.
func (a *Attachments) Cleanup(ctx context.Context) error {
	all, err := a.coll.All(ctx)
	if err != nil {
		return err
	}
	cutoff := a.now() - a.grace.Milliseconds()
	var errs []error
	for _, att := range all {
		if len(att.NoteIDs) > 0 || att.DateDeleted == 0 || att.DateDeleted >= cutoff {
			continue
		}
		if err := a.Remove(ctx, att.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MarkUploaded records that the file reached the server.
func (a *Attachments) MarkUploaded(ctx context.Context, hashOrID string) error {
	att, err := a.Attachment(ctx, hashOrID)
	if err != nil {
		return err
	}
	att.DateUploaded = a.now()
	att.DateModified = att.DateUploaded
	return a.coll.Add(ctx, att)
}

// Key decrypts the file key of an attachment.
func (a *Attachments) Key(ctx context.Context, hashOrID string) (string, error) {
	att, err := a.Attachment(ctx, hashOrID)
	if err != nil {
		return "", err
	}
	if att.Key == nil {
		return "", fmt.Errorf("%w: attachment %s has no key", core.ErrInvalidAttachment, att.ID)
	}
	key, err := a.userKey(ctx)
	if err != nil {
		return "", err
	}
	plain, err := a.cipher.Decrypt(key, *att.Key)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt attachment key: %w", err)
	}
	return string(plain), nil
}
