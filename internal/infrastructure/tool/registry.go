package tool

import (
	domaintool "github.com/hashtalk/hashtalk/gateway/internal/domain/tool"
)

// RegisterAllTools 注册全部账本工具
func RegisterAllTools(registry domaintool.Registry, deps Deps) error {
	tools := []domaintool.Tool{
		NewCreateFungibleTokenTool(deps),
		NewMintTokenTool(deps),
		NewTransferTokenTool(deps),
		NewHbarBalanceTool(deps),
		NewTokenInfoTool(deps),
		NewResolveAccountTool(deps),
	}

	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}
