package ops

import (
	"encoding/xml"

	"github.com/napi-network/napi/netconf/common"
)

// Datastores.
const (
	RunningCfg   = common.Running
	CandidateCfg = common.Candidate
	StartupCfg   = common.Startup
)

// Values of the edit-config error-option.
const (
	StopOnErrorErrOpt     = "stop-on-error"
	ContinueOnErrorErrOpt = "continue-on-error"
	RollbackOnErrorErrOpt = "rollback-on-error"
)

// Values of the edit-config default-operation.
const (
	MergeOp   = "merge"
	ReplaceOp = "replace"
	NoneOp    = "none"
)

// Data is the data element of a get or get-config reply. Body receives the
// decoded payload, Content the raw XML.
type Data struct {
	XMLName xml.Name    `xml:"data"`
	Body    interface{} `xml:",any"`
	Content string      `xml:",innerxml"`
}
