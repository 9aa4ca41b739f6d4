// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package graphql

import (
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/samber/oops"

	"github.com/driftboard/driftboard/internal/auth"
	"github.com/driftboard/driftboard/internal/posts"
	"github.com/driftboard/driftboard/internal/session"
	"github.com/driftboard/driftboard/pkg/errutil"
)

// errInternal is the only error text clients ever see for unexpected
// failures; the real cause is logged server side.
var errInternal = errors.New("internal server error")

func (r *Root) internal(op string, err error) error {
	errutil.LogError(r.logger, "resolver failed", oops.With("operation", op).Wrap(err))
	return errInternal
}

func (r *Root) session(p graphql.ResolveParams) (auth.UserSession, error) {
	sess, ok := session.FromContext(p.Context)
	if !ok {
		return nil, oops.Code("GRAPHQL_NO_SESSION").Errorf("no session in request context")
	}
	return sess, nil
}

func userPayload(u *auth.User) map[string]any {
	if u == nil {
		return nil
	}
	return map[string]any{
		"id":        u.ID.String(),
		"username":  u.Username,
		"email":     u.Email,
		"createdAt": u.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func resultPayload(res *auth.Result) map[string]any {
	out := map[string]any{
		"errors": nil,
		"user":   nil,
	}
	if res.User != nil {
		out["user"] = userPayload(res.User)
	}
	if len(res.Errors) > 0 {
		errs := make([]map[string]any, 0, len(res.Errors))
		for _, fe := range res.Errors {
			errs = append(errs, map[string]any{
				"field":   fe.Field,
				"message": fe.Message,
			})
		}
		out["errors"] = errs
	}
	return out
}

func postPayload(p *posts.Post) map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"id":        int(p.ID),
		"title":     p.Title,
		"createdAt": p.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (r *Root) resolveMe(p graphql.ResolveParams) (any, error) {
	sess, err := r.session(p)
	if err != nil {
		return nil, r.internal("me", err)
	}
	user, err := r.auth.Me(p.Context, sess)
	if err != nil {
		return nil, r.internal("me", err)
	}
	if user == nil {
		return nil, nil
	}
	return userPayload(user), nil
}

func (r *Root) resolveRegister(p graphql.ResolveParams) (any, error) {
	sess, err := r.session(p)
	if err != nil {
		return nil, r.internal("register", err)
	}
	options, _ := p.Args["options"].(map[string]any)
	input := auth.RegisterInput{
		Username: stringArg(options, "username"),
		Email:    stringArg(options, "email"),
		Password: stringArg(options, "password"),
	}
	res, err := r.auth.Register(p.Context, sess, input)
	if err != nil {
		return nil, r.internal("register", err)
	}
	return resultPayload(res), nil
}

func (r *Root) resolveLogin(p graphql.ResolveParams) (any, error) {
	sess, err := r.session(p)
	if err != nil {
		return nil, r.internal("login", err)
	}
	res, err := r.auth.Login(p.Context, sess, stringArg(p.Args, "usernameOrEmail"), stringArg(p.Args, "password"))
	if err != nil {
		return nil, r.internal("login", err)
	}
	return resultPayload(res), nil
}

func (r *Root) resolveLogout(p graphql.ResolveParams) (any, error) {
	sess, err := r.session(p)
	if err != nil {
		return nil, r.internal("logout", err)
	}
	return r.auth.Logout(p.Context, sess), nil
}

func (r *Root) resolveForgotPassword(p graphql.ResolveParams) (any, error) {
	ok, err := r.auth.ForgotPassword(p.Context, stringArg(p.Args, "email"))
	if err != nil {
		return nil, r.internal("forgotPassword", err)
	}
	return ok, nil
}

func (r *Root) resolveChangePassword(p graphql.ResolveParams) (any, error) {
	sess, err := r.session(p)
	if err != nil {
		return nil, r.internal("changePassword", err)
	}
	res, err := r.auth.ChangePassword(p.Context, sess, stringArg(p.Args, "token"), stringArg(p.Args, "newPassword"))
	if err != nil {
		return nil, r.internal("changePassword", err)
	}
	return resultPayload(res), nil
}

func (r *Root) resolvePosts(p graphql.ResolveParams) (any, error) {
	list, err := r.posts.List(p.Context)
	if err != nil {
		return nil, r.internal("posts", err)
	}
	out := make([]map[string]any, 0, len(list))
	for _, post := range list {
		out = append(out, postPayload(post))
	}
	return out, nil
}

func (r *Root) resolvePost(p graphql.ResolveParams) (any, error) {
	post, err := r.posts.Get(p.Context, int64(asInt(p.Args["id"])))
	if err != nil {
		return nil, r.internal("post", err)
	}
	if post == nil {
		return nil, nil
	}
	return postPayload(post), nil
}

func (r *Root) resolveCreatePost(p graphql.ResolveParams) (any, error) {
	post, err := r.posts.Create(p.Context, stringArg(p.Args, "title"))
	if err != nil {
		return nil, r.internal("createPost", err)
	}
	return postPayload(post), nil
}

func (r *Root) resolveUpdatePost(p graphql.ResolveParams) (any, error) {
	id := asInt(p.Args["id"])
	title, hasTitle := p.Args["title"].(string)
	if !hasTitle {
		// A null title leaves the post untouched.
		post, err := r.posts.Get(p.Context, int64(id))
		if err != nil {
			return nil, r.internal("updatePost", err)
		}
		if post == nil {
			return nil, nil
		}
		return postPayload(post), nil
	}
	post, err := r.posts.Update(p.Context, int64(id), title)
	if err != nil {
		return nil, r.internal("updatePost", err)
	}
	if post == nil {
		return nil, nil
	}
	return postPayload(post), nil
}

func (r *Root) resolveDeletePost(p graphql.ResolveParams) (any, error) {
	return r.posts.Delete(p.Context, int64(asInt(p.Args["id"]))), nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func asInt(v any) int {
	i, _ := v.(int)
	return i
}
