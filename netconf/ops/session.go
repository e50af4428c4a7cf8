package ops

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/pkg/errors"

	"github.com/napi-network/napi/netconf/client"
	"github.com/napi-network/napi/netconf/common"
)

// Session represents a Netconf Operations Session
type Session interface {
	client.Session

	// Get issues a GET request, with the supplied subtree filter and stores the response in the result, which
	// should be the address of either:
	// - a string, in which case it will hold the response body, or
	// - a struct with xml tags.
	// A reply with no data leaves result untouched.
	Get(ctx context.Context, filter, result interface{}) error

	// GetConfig issues a GET-CONFIG request, with the supplied subtree filter and source, and stores the
	// response in the result as Get does. An empty source means running.
	GetConfig(ctx context.Context, source string, filter, result interface{}) error

	// EditConfig issues an edit-config request with config as the content of the
	// config element. config is either an xml string, used verbatim, or a
	// struct with xml tags. An empty target means running.
	EditConfig(ctx context.Context, target string, config interface{}, options ...EditOption) error

	// CloseSession issues a close session request.
	CloseSession(ctx context.Context) error
}

type sImpl struct {
	client.Session
}

func (s *sImpl) Get(ctx context.Context, filter, result interface{}) error {
	return s.handleGetRequest(ctx, GetRequest(filter), result)
}

func (s *sImpl) GetConfig(ctx context.Context, source string, filter, result interface{}) error {
	return s.handleGetRequest(ctx, GetConfigRequest(source, filter), result)
}

func (s *sImpl) EditConfig(ctx context.Context, target string, config interface{}, options ...EditOption) error {
	_, err := s.Session.Execute(ctx, EditConfigRequest(target, config, options...))
	return err
}

func (s *sImpl) CloseSession(ctx context.Context) error {
	_, err := s.Session.Execute(ctx, CloseSessionRequest())
	return err
}

func (s *sImpl) handleGetRequest(ctx context.Context, req common.Request, result interface{}) error {
	reply, err := s.Session.Execute(ctx, req)
	if err != nil {
		return err
	}
	if strings.TrimSpace(reply.Data) == "" {
		return nil
	}

	switch target := result.(type) {
	case *string:
		data := &Data{}
		err = xml.Unmarshal([]byte(reply.Data), data)
		*target = data.Content
	default:
		data := &Data{Body: result}
		err = xml.Unmarshal([]byte(reply.Data), data)
	}
	return errors.Wrap(err, "failed to decode reply")
}

// Request structs.

// Filter is a subtree filter.
type Filter struct {
	XMLName xml.Name `xml:"filter"`
	Type    string   `xml:"type,attr"`
	*common.Union
}

// Config is the config element of an edit-config.
type Config struct {
	XMLName xml.Name `xml:"config"`
	*common.Union
}

// GetReq is a get request.
type GetReq struct {
	XMLName xml.Name `xml:"get"`
	Filter  *Filter
}

// ConfigType names a datastore.
type ConfigType struct {
	Type string `xml:",innerxml"`
}

// GetConfigReq is a get-config request.
type GetConfigReq struct {
	XMLName xml.Name    `xml:"get-config"`
	Source  *ConfigType `xml:"source"`
	Filter  *Filter
}

// EditConfigReq is an edit-config request.
type EditConfigReq struct {
	XMLName          xml.Name    `xml:"edit-config"`
	Target           *ConfigType `xml:"target"`
	DefaultOperation string      `xml:"default-operation,omitempty"`
	ErrorOption      string      `xml:"error-option,omitempty"`
	Config           *Config
}

// EditOption configures an edit config operation.
type EditOption func(*EditConfigReq)

// DefaultOperation sets the default-operation of an edit-config.
func DefaultOperation(oper string) EditOption {
	return func(req *EditConfigReq) {
		req.DefaultOperation = oper
	}
}

// ErrorOption sets the error-option of an edit-config.
func ErrorOption(opt string) EditOption {
	return func(req *EditConfigReq) {
		req.ErrorOption = opt
	}
}

// GetRequest builds a get with a subtree filter, or no filter when filter is nil.
func GetRequest(filter interface{}) *GetReq {
	req := &GetReq{}
	if filter != nil {
		req.Filter = &Filter{Type: "subtree", Union: common.GetUnion(filter)}
	}
	return req
}

// GetConfigRequest builds a get-config of source.
func GetConfigRequest(source string, filter interface{}) *GetConfigReq {
	// xml Marshaller will not create self-closing tags (and some devices require it)...
	req := &GetConfigReq{Source: datastore(source)}
	if filter != nil {
		req.Filter = &Filter{Type: "subtree", Union: common.GetUnion(filter)}
	}
	return req
}

// EditConfigRequest builds an edit-config of target.
func EditConfigRequest(target string, config interface{}, options ...EditOption) *EditConfigReq {
	req := &EditConfigReq{Target: datastore(target), Config: &Config{Union: common.GetUnion(config)}}
	for _, opt := range options {
		opt(req)
	}
	return req
}

// CloseSessionRequest builds a close-session.
func CloseSessionRequest() *common.CloseSessionReq {
	return &common.CloseSessionReq{}
}

func datastore(name string) *ConfigType {
	if name == "" {
		name = RunningCfg
	}
	return &ConfigType{Type: "<" + name + "/>"}
}
