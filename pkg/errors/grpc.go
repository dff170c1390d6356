package errors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPCError converts err to a gRPC status error. Errors that already
// carry a status pass through; anything without a code becomes INTERNAL.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	var appErr *AppError
	if As(err, &appErr) {
		_, grpcCode := GetCodeMapping(appErr.Code())
		return status.Error(codes.Code(grpcCode), appErr.Message())
	}

	return status.Error(codes.Internal, "internal error")
}
