package remote

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type GRPCClient struct {
	conn    *grpc.ClientConn
	tokens  TokenSource
	auth    *rpc.AuthClient
	records *rpc.RecordsClient
	media   *rpc.MediaClient
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults, which lets tests dial an in-memory listener.
func NewGRPCClient(endpointURL string, tokens TokenSource, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{tokens: tokens}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.auth = rpc.NewAuthClient(conn)
	c.records = rpc.NewRecordsClient(conn)
	c.media = rpc.NewMediaClient(conn)
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			ctx = withAccessToken(ctx, token)
		}
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Register(ctx context.Context, username, password string) (*Account, error) {
	resp, err := c.auth.Register(ctx, &rpc.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return &Account{UserID: resp.UserID, Username: resp.Username, AccessToken: resp.AccessToken}, nil
}

func (c *GRPCClient) Login(ctx context.Context, username, password string) (*Account, error) {
	resp, err := c.auth.Login(ctx, &rpc.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return &Account{UserID: resp.UserID, Username: resp.Username, AccessToken: resp.AccessToken}, nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	return mapError(c.records.Ping(ctx))
}

// Create sends a new record. idempotencyKey is the temporary id of the local
// record: the server answers a repeated key with the record it already made.
func (c *GRPCClient) Create(ctx context.Context, t models.EntityType, idempotencyKey string, payload []byte) (*Record, error) {
	resp, err := c.records.Create(ctx, &rpc.CreateRequest{
		EntityType:     string(t),
		IdempotencyKey: idempotencyKey,
		Payload:        payload,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return fromRPC(resp), nil
}

func (c *GRPCClient) Update(ctx context.Context, t models.EntityType, id string, payload []byte) (*Record, error) {
	resp, err := c.records.Update(ctx, &rpc.UpdateRequest{EntityType: string(t), ID: id, Payload: payload})
	if err != nil {
		return nil, mapError(err)
	}
	return fromRPC(resp), nil
}

func (c *GRPCClient) Delete(ctx context.Context, t models.EntityType, id string) error {
	return mapError(c.records.Delete(ctx, &rpc.DeleteRequest{EntityType: string(t), ID: id}))
}

func (c *GRPCClient) List(ctx context.Context, t models.EntityType, f ListFilter) ([]*Record, error) {
	resp, err := c.records.List(ctx, &rpc.ListRequest{
		EntityType:   string(t),
		From:         f.From,
		To:           f.To,
		UpdatedSince: f.UpdatedSince,
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]*Record, 0, len(resp.Records))
	for i := range resp.Records {
		out = append(out, fromRPC(&resp.Records[i]))
	}
	return out, nil
}

func (c *GRPCClient) PresignPhotoUpload(ctx context.Context) (string, string, error) {
	resp, err := c.media.PresignPhotoUpload(ctx)
	if err != nil {
		return "", "", mapError(err)
	}
	return resp.Key, resp.URL, nil
}

func (c *GRPCClient) PresignPhotoDownload(ctx context.Context, key string) (string, error) {
	resp, err := c.media.PresignPhotoDownload(ctx, key)
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}

func fromRPC(r *rpc.Record) *Record {
	return &Record{
		ID:             r.ID,
		EntityType:     models.EntityType(r.EntityType),
		IdempotencyKey: r.IdempotencyKey,
		Payload:        compact(r.Payload),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// compact strips the whitespace the Struct envelope introduces, so stored
// payloads stay byte-stable.
func compact(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
